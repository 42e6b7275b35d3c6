package router

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	json "github.com/goccy/go-json"
)

// callbackPayload is what the router hands a pair as the settlement
// payload. The router address binds the payload to the router that built
// it; the caller is who input tokens are pulled from.
type callbackPayload struct {
	Router common.Address `json:"router"`
	Caller common.Address `json:"caller"`
	Inner  []byte         `json:"inner,omitempty"`
}

func encodePayload(p *callbackPayload) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode callback payload: %w", err)
	}
	return data, nil
}

func decodePayload(data []byte) (*callbackPayload, error) {
	var p callbackPayload
	err := json.Unmarshal(data, &p)
	if err != nil {
		return nil, fmt.Errorf("decode callback payload: %w", err)
	}
	return &p, nil
}
