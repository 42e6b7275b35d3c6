package assetsource

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/mselser95/auctionflow/pkg/types"
	"go.uber.org/zap"
)

// Vault contract surface consumed by the EVM source.
const vaultABI = `[
	{"constant":true,"inputs":[{"name":"tokenIn","type":"address"}],"name":"targetOf","outputs":[{"name":"","type":"address"}],"type":"function"},
	{"constant":true,"inputs":[{"name":"tokenOut","type":"address"}],"name":"liquidatableBalanceOf","outputs":[{"name":"","type":"uint256"}],"type":"function"},
	{"constant":false,"inputs":[{"name":"initiator","type":"address"},{"name":"receiver","type":"address"},{"name":"tokenOut","type":"address"},{"name":"amount","type":"uint256"}],"name":"transferOut","outputs":[],"type":"function"},
	{"constant":true,"inputs":[{"name":"tokenIn","type":"address"},{"name":"amountIn","type":"uint256"},{"name":"receipt","type":"bytes32"}],"name":"verifyIn","outputs":[{"name":"","type":"bool"}],"type":"function"},
	{"constant":false,"inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"tokenIn","type":"address"},{"name":"amount","type":"uint256"}],"name":"pullIn","outputs":[],"type":"function"}
]`

// EVMSource is a Source backed by an on-chain vault contract. Reads go
// through eth_call; transfers are signed legacy transactions whose hash
// doubles as the settlement receipt.
type EVMSource struct {
	rpcURL   string
	contract common.Address
	chainID  *big.Int
	key      *ecdsa.PrivateKey
	from     common.Address
	abi      abi.ABI
	logger   *zap.Logger
}

// EVMConfig holds EVM source configuration.
type EVMConfig struct {
	RPCURL        string
	VaultContract common.Address
	ChainID       *big.Int
	PrivateKeyHex string
	Logger        *zap.Logger
}

// NewEVMSource creates an EVM-backed asset source.
func NewEVMSource(cfg *EVMConfig) (*EVMSource, error) {
	if cfg.RPCURL == "" {
		return nil, errors.New("rpcURL cannot be empty")
	}
	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	publicKey, ok := key.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, errors.New("error casting public key to ECDSA")
	}

	parsedABI, err := abi.JSON(strings.NewReader(vaultABI))
	if err != nil {
		return nil, fmt.Errorf("parse vault ABI: %w", err)
	}

	return &EVMSource{
		rpcURL:   cfg.RPCURL,
		contract: cfg.VaultContract,
		chainID:  cfg.ChainID,
		key:      key,
		from:     crypto.PubkeyToAddress(*publicKey),
		abi:      parsedABI,
		logger:   cfg.Logger,
	}, nil
}

// ChainID returns the chain the source signs transactions for.
func (s *EVMSource) ChainID() *big.Int {
	return new(big.Int).Set(s.chainID)
}

// TargetOf implements Source.
func (s *EVMSource) TargetOf(ctx context.Context, tokenIn common.Address) (common.Address, error) {
	result, err := s.call(ctx, "targetOf", tokenIn)
	if err != nil {
		return common.Address{}, err
	}

	var target common.Address
	err = s.abi.UnpackIntoInterface(&target, "targetOf", result)
	if err != nil {
		return common.Address{}, fmt.Errorf("unpack targetOf: %w", err)
	}

	return target, nil
}

// LiquidatableBalanceOf implements Source.
func (s *EVMSource) LiquidatableBalanceOf(ctx context.Context, tokenOut common.Address) (*big.Int, error) {
	result, err := s.call(ctx, "liquidatableBalanceOf", tokenOut)
	if err != nil {
		return nil, err
	}

	balance := new(big.Int)
	err = s.abi.UnpackIntoInterface(&balance, "liquidatableBalanceOf", result)
	if err != nil {
		return nil, fmt.Errorf("unpack liquidatableBalanceOf: %w", err)
	}

	return balance, nil
}

// TransferTokensOut implements Source. The returned receipt is the
// transaction hash of the transferOut call.
func (s *EVMSource) TransferTokensOut(ctx context.Context, initiator, receiver, tokenOut common.Address, amount *big.Int) (types.Receipt, error) {
	txHash, err := s.transact(ctx, "transferOut", initiator, receiver, tokenOut, amount)
	if err != nil {
		return nil, err
	}

	s.logger.Info("evm-transfer-out",
		zap.String("token", tokenOut.Hex()),
		zap.String("receiver", receiver.Hex()),
		zap.String("amount", amount.String()),
		zap.String("tx", txHash.Hex()))

	return types.Receipt(txHash.Bytes()), nil
}

// VerifyTokensIn implements Source.
func (s *EVMSource) VerifyTokensIn(ctx context.Context, tokenIn common.Address, amountIn *big.Int, receipt types.Receipt) error {
	if len(receipt) != common.HashLength {
		return fmt.Errorf("malformed receipt: %d bytes", len(receipt))
	}

	result, err := s.call(ctx, "verifyIn", tokenIn, amountIn, common.BytesToHash(receipt))
	if err != nil {
		return err
	}

	var delivered bool
	err = s.abi.UnpackIntoInterface(&delivered, "verifyIn", result)
	if err != nil {
		return fmt.Errorf("unpack verifyIn: %w", err)
	}

	if !delivered {
		return fmt.Errorf("input %s of %s not delivered to target", amountIn, tokenIn.Hex())
	}

	return nil
}

// PullTokensIn implements Source.
func (s *EVMSource) PullTokensIn(ctx context.Context, from, to, tokenIn common.Address, amount *big.Int) error {
	txHash, err := s.transact(ctx, "pullIn", from, to, tokenIn, amount)
	if err != nil {
		return err
	}

	s.logger.Info("evm-pull-in",
		zap.String("token", tokenIn.Hex()),
		zap.String("from", from.Hex()),
		zap.String("to", to.Hex()),
		zap.String("amount", amount.String()),
		zap.String("tx", txHash.Hex()))

	return nil
}

// call performs a read-only contract call.
func (s *EVMSource) call(ctx context.Context, method string, args ...interface{}) ([]byte, error) {
	client, err := ethclient.DialContext(ctx, s.rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial RPC: %w", err)
	}
	defer client.Close()

	data, err := s.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	msg := ethereum.CallMsg{
		To:   &s.contract,
		Data: data,
	}

	result, err := client.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}

	return result, nil
}

// transact signs and sends a state-changing contract call and waits for it
// to be mined.
func (s *EVMSource) transact(ctx context.Context, method string, args ...interface{}) (common.Hash, error) {
	client, err := ethclient.DialContext(ctx, s.rpcURL)
	if err != nil {
		return common.Hash{}, fmt.Errorf("dial RPC: %w", err)
	}
	defer client.Close()

	data, err := s.abi.Pack(method, args...)
	if err != nil {
		return common.Hash{}, fmt.Errorf("pack %s: %w", method, err)
	}

	nonce, err := client.PendingNonceAt(ctx, s.from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("get nonce: %w", err)
	}

	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("suggest gas price: %w", err)
	}

	gasLimit, err := client.EstimateGas(ctx, ethereum.CallMsg{
		From: s.from,
		To:   &s.contract,
		Data: data,
	})
	if err != nil {
		return common.Hash{}, fmt.Errorf("estimate gas: %w", err)
	}

	tx := ethtypes.NewTransaction(nonce, s.contract, new(big.Int), gasLimit, gasPrice, data)

	signedTx, err := ethtypes.SignTx(tx, ethtypes.NewEIP155Signer(s.chainID), s.key)
	if err != nil {
		return common.Hash{}, fmt.Errorf("sign tx: %w", err)
	}

	err = client.SendTransaction(ctx, signedTx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("send tx: %w", err)
	}

	rcpt, err := waitMined(ctx, client, signedTx.Hash())
	if err != nil {
		return common.Hash{}, fmt.Errorf("wait mined: %w", err)
	}

	if rcpt.Status != ethtypes.ReceiptStatusSuccessful {
		return common.Hash{}, fmt.Errorf("%s tx %s reverted", method, signedTx.Hash().Hex())
	}

	return signedTx.Hash(), nil
}

func waitMined(ctx context.Context, client *ethclient.Client, hash common.Hash) (*ethtypes.Receipt, error) {
	for {
		rcpt, err := client.TransactionReceipt(ctx, hash)
		if err == nil {
			return rcpt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
		}
	}
}
