package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/big"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/ethereum/go-ethereum/common"
	"github.com/mselser95/auctionflow/pkg/types"
	"go.uber.org/zap"
)

func testEvent() *types.SwapEvent {
	return &types.SwapEvent{
		ID:          "11111111-2222-3333-4444-555555555555",
		PairID:      "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee",
		Sender:      common.HexToAddress("0xB01"),
		Receiver:    common.HexToAddress("0xB01"),
		TokenIn:     common.HexToAddress("0xA01"),
		TokenOut:    common.HexToAddress("0xA02"),
		AmountOut:   big.NewInt(1000),
		AmountInMax: big.NewInt(5000),
		AmountIn:    big.NewInt(4200),
		ExecutedAt:  time.Unix(1_700_000_000, 0),
	}
}

func TestConsoleStorage_StoreSwap(t *testing.T) {
	logger := zap.NewNop()
	storage := NewConsoleStorage(logger)

	// Capture stdout
	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := storage.StoreSwap(context.Background(), testEvent())

	w.Close()
	os.Stdout = oldStdout

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	output := buf.String()

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if !bytes.Contains([]byte(output), []byte("AUCTION CLEARED")) {
		t.Error("expected output to contain 'AUCTION CLEARED'")
	}

	if !bytes.Contains([]byte(output), []byte("4200")) {
		t.Error("expected output to contain the charged amount")
	}
}

func TestConsoleStorage_Close(t *testing.T) {
	storage := NewConsoleStorage(zap.NewNop())

	err := storage.Close()
	if err != nil {
		t.Errorf("expected no error on close, got %v", err)
	}
}

func TestPostgresStorage_StoreSwap(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	storage := &PostgresStorage{db: db, logger: zap.NewNop()}
	event := testEvent()

	mock.ExpectExec("INSERT INTO swap_events").
		WithArgs(
			event.ID,
			event.PairID,
			event.Sender.Hex(),
			event.Receiver.Hex(),
			event.TokenIn.Hex(),
			event.TokenOut.Hex(),
			event.AmountOut.String(),
			event.AmountInMax.String(),
			event.AmountIn.String(),
			event.Payload,
			event.ExecutedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = storage.StoreSwap(context.Background(), event)
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sqlmock expectations: %v", err)
	}
}

func TestPostgresStorage_StoreSwapError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	storage := &PostgresStorage{db: db, logger: zap.NewNop()}

	mock.ExpectExec("INSERT INTO swap_events").
		WillReturnError(errors.New("connection lost"))

	err = storage.StoreSwap(context.Background(), testEvent())
	if err == nil {
		t.Error("expected error from failed insert")
	}
}

func TestPostgresStorage_Close(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	storage := &PostgresStorage{db: db, logger: zap.NewNop()}

	mock.ExpectClose()

	err = storage.Close()
	if err != nil {
		t.Errorf("expected no error on close, got %v", err)
	}
}
