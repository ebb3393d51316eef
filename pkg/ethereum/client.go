package ethereum

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	geth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/chainsafe/primary-sale-minter/internal/metrics"
	"github.com/chainsafe/primary-sale-minter/pkg/config"
	"github.com/chainsafe/primary-sale-minter/pkg/ethereum/contracts"
	"github.com/chainsafe/primary-sale-minter/pkg/sale"
)

const transferGas = 21000

// ErrReverted is returned when a submitted transaction was mined with a failed status.
var ErrReverted = errors.New("transaction reverted")

// Client issues units on the sale token contract and pays out treasury funds,
// both signed by the configured minter key.
type Client struct {
	config     *config.EthereumConfig
	client     *ethclient.Client
	privateKey *ecdsa.PrivateKey
	address    common.Address
	chainID    *big.Int
	maxGas     *big.Int
	logger     *zap.Logger

	tokenAddress common.Address
	token        *contracts.SaleToken
}

// NewClient creates a new Ethereum client
func NewClient(cfg *config.EthereumConfig, logger *zap.Logger) (*Client, error) {
	maxGas, err := parseMaxGasPrice(cfg.MaxGasPrice)
	if err != nil {
		return nil, err
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.MinterPrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to load private key: %w", err)
	}

	client, err := ethclient.Dial(cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Ethereum RPC: %w", err)
	}

	address := crypto.PubkeyToAddress(privateKey.PublicKey)
	tokenAddress := common.HexToAddress(cfg.TokenContract)

	token, err := contracts.NewSaleToken(tokenAddress, client)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to load token contract: %w", err)
	}

	logger.Info("Connected to Ethereum",
		zap.Int64("chain_id", cfg.ChainID),
		zap.String("rpc_url", cfg.RPCURL),
		zap.String("token_contract", tokenAddress.Hex()),
		zap.String("minter_address", address.Hex()))

	return &Client{
		config:       cfg,
		client:       client,
		privateKey:   privateKey,
		address:      address,
		chainID:      big.NewInt(cfg.ChainID),
		maxGas:       maxGas,
		tokenAddress: tokenAddress,
		token:        token,
		logger:       logger,
	}, nil
}

// Close closes the Ethereum client
func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

// Address returns the minter account.
func (c *Client) Address() common.Address {
	return c.address
}

// GetTransactor returns a transaction signer
func (c *Client) GetTransactor(ctx context.Context) (*bind.TransactOpts, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(c.privateKey, c.chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}

	nonce, err := c.client.PendingNonceAt(ctx, c.address)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}

	auth.Context = ctx
	auth.Nonce = new(big.Int).SetUint64(nonce)
	auth.GasLimit = c.config.GasLimit

	if c.maxGas != nil {
		gasPrice, err := c.gasPrice(ctx)
		if err != nil {
			return nil, err
		}
		auth.GasPrice = gasPrice
	}

	return auth, nil
}

// gasPrice returns the suggested gas price capped at the configured maximum.
func (c *Client) gasPrice(ctx context.Context) (*big.Int, error) {
	gasPrice, err := c.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to suggest gas price: %w", err)
	}
	if c.maxGas != nil && gasPrice.Cmp(c.maxGas) > 0 {
		c.logger.Warn("Suggested gas price exceeds maximum",
			zap.String("suggested", gasPrice.String()),
			zap.String("max", c.maxGas.String()))
		return new(big.Int).Set(c.maxGas), nil
	}
	return gasPrice, nil
}

// IsMinter reports whether the client key holds MINTER_ROLE on the token contract.
func (c *Client) IsMinter(ctx context.Context) (bool, error) {
	ok, err := c.token.HasRole(&bind.CallOpts{Context: ctx}, MinterRoleID, c.address)
	if err != nil {
		return false, fmt.Errorf("failed to query minter role: %w", err)
	}
	return ok, nil
}

// Issue mints tokenID to recipient and waits for the transaction to be mined.
//
// Once the transaction has left this process the wait no longer follows ctx:
// it runs for ReceiptTimeout and a wait that ends without a receipt returns a
// *sale.UnconfirmedError.
func (c *Client) Issue(ctx context.Context, recipient common.Address, tokenID *big.Int) error {
	ctx, cancel := c.detach(ctx)
	defer cancel()

	auth, err := c.GetTransactor(ctx)
	if err != nil {
		return err
	}
	auth.NoSend = true

	tx, err := c.token.Mint(auth, recipient, tokenID)
	if err != nil {
		return fmt.Errorf("failed to build mint transaction: %w", err)
	}
	if err := c.send(ctx, tx, "mint"); err != nil {
		return err
	}

	c.logger.Info("Mint transaction submitted",
		zap.String("tx_hash", tx.Hash().Hex()),
		zap.String("recipient", recipient.Hex()),
		zap.String("token_id", tokenID.String()))

	return c.waitMined(ctx, tx, "mint")
}

// BalanceOf returns the number of tokens held by account.
func (c *Client) BalanceOf(ctx context.Context, account common.Address) (*big.Int, error) {
	bal, err := c.token.BalanceOf(&bind.CallOpts{Context: ctx}, account)
	if err != nil {
		return nil, fmt.Errorf("failed to query balance: %w", err)
	}
	return bal, nil
}

// OwnerOf returns the holder of tokenID.
func (c *Client) OwnerOf(ctx context.Context, tokenID *big.Int) (common.Address, error) {
	owner, err := c.token.OwnerOf(&bind.CallOpts{Context: ctx}, tokenID)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to query owner of %s: %w", tokenID, err)
	}
	return owner, nil
}

// TotalSupply returns the number of minted tokens.
func (c *Client) TotalSupply(ctx context.Context) (*big.Int, error) {
	supply, err := c.token.TotalSupply(&bind.CallOpts{Context: ctx})
	if err != nil {
		return nil, fmt.Errorf("failed to query total supply: %w", err)
	}
	return supply, nil
}

// Pay transfers amount, in whole native units, from the minter account to to.
// Like Issue it reports a sent but unconfirmed transfer as *sale.UnconfirmedError.
func (c *Client) Pay(ctx context.Context, to common.Address, amount decimal.Decimal) error {
	value, err := ToWei(amount)
	if err != nil {
		return err
	}

	ctx, cancel := c.detach(ctx)
	defer cancel()

	nonce, err := c.client.PendingNonceAt(ctx, c.address)
	if err != nil {
		return fmt.Errorf("failed to get nonce: %w", err)
	}
	gasPrice, err := c.gasPrice(ctx)
	if err != nil {
		return err
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      transferGas,
		GasPrice: gasPrice,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(c.chainID), c.privateKey)
	if err != nil {
		return fmt.Errorf("failed to sign transfer: %w", err)
	}
	if err := c.send(ctx, signed, "withdraw"); err != nil {
		return err
	}

	c.logger.Info("Treasury transfer submitted",
		zap.String("tx_hash", signed.Hash().Hex()),
		zap.String("to", to.Hex()),
		zap.String("amount", amount.String()))

	return c.waitMined(ctx, signed, "withdraw")
}

// VerifyPayment checks that txHash is a mined, successful transfer from payer
// to the minter account and returns its value in native units. Transactions
// that do not prove such a payment yield an error wrapping sale.ErrPaymentInvalid.
func (c *Client) VerifyPayment(ctx context.Context, payer common.Address, txHash common.Hash) (decimal.Decimal, error) {
	tx, pending, err := c.client.TransactionByHash(ctx, txHash)
	if errors.Is(err, geth.NotFound) {
		return decimal.Zero, fmt.Errorf("%w: %s not found", sale.ErrPaymentInvalid, txHash.Hex())
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch payment transaction: %w", err)
	}
	if pending {
		return decimal.Zero, fmt.Errorf("%w: %s is still pending", sale.ErrPaymentInvalid, txHash.Hex())
	}
	if to := tx.To(); to == nil || *to != c.address {
		return decimal.Zero, fmt.Errorf("%w: %s is not paid to %s", sale.ErrPaymentInvalid, txHash.Hex(), c.address.Hex())
	}
	from, err := types.Sender(types.LatestSignerForChainID(c.chainID), tx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: recover sender of %s: %v", sale.ErrPaymentInvalid, txHash.Hex(), err)
	}
	if from != payer {
		return decimal.Zero, fmt.Errorf("%w: %s was sent by %s", sale.ErrPaymentInvalid, txHash.Hex(), from.Hex())
	}

	receipt, err := c.client.TransactionReceipt(ctx, txHash)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to fetch payment receipt: %w", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return decimal.Zero, fmt.Errorf("%w: %s reverted", sale.ErrPaymentInvalid, txHash.Hex())
	}
	return FromWei(tx.Value()), nil
}

// detach keeps the values of ctx but not its cancellation, bounding the
// result by the receipt timeout instead.
func (c *Client) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithoutCancel(ctx)
	if c.config.ReceiptTimeout > 0 {
		return context.WithTimeout(ctx, c.config.ReceiptTimeout)
	}
	return context.WithCancel(ctx)
}

func (c *Client) send(ctx context.Context, tx *types.Transaction, operation string) error {
	err := c.client.SendTransaction(ctx, tx)
	switch {
	case err == nil, alreadyKnown(err):
		return nil
	case ambiguousSendError(err):
		return &sale.UnconfirmedError{Operation: operation, TxHash: tx.Hash().Hex(), Err: err}
	default:
		return fmt.Errorf("failed to submit %s transaction: %w", operation, err)
	}
}

func (c *Client) waitMined(ctx context.Context, tx *types.Transaction, operation string) error {
	receipt, err := bind.WaitMined(ctx, c.client, tx)
	if err != nil {
		return &sale.UnconfirmedError{Operation: operation, TxHash: tx.Hash().Hex(), Err: err}
	}
	metrics.GasUsed.WithLabelValues(operation).Observe(float64(receipt.GasUsed))

	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("%w: %s %s", ErrReverted, operation, tx.Hash().Hex())
	}
	return nil
}
