package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"nftmarket/config"
	"nftmarket/core/events"
	nftstate "nftmarket/core/state"
	"nftmarket/native/market"
	"nftmarket/native/metadata"
	"nftmarket/native/token"
	"nftmarket/observability/logging"
	"nftmarket/storage"
)

type logEmitter struct {
	logger *slog.Logger
}

func (l logEmitter) Emit(evt events.Event) {
	l.logger.Info("event", "type", evt.EventType())
}

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	persistent := flag.Bool("persistent", false, "Store state in LevelDB under DataDir instead of memory")
	flag.Parse()

	env := strings.TrimSpace(os.Getenv("MARKET_ENV"))
	logger := logging.Setup("marketd", env)

	cfg, err := config.Load(*configFile)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	programID, err := cfg.ProgramIDBytes()
	if err != nil {
		logger.Error("invalid program id", "error", err)
		os.Exit(1)
	}
	metadataProgramID, err := cfg.MetadataProgramIDBytes()
	if err != nil {
		logger.Error("invalid metadata program id", "error", err)
		os.Exit(1)
	}

	var db storage.Database
	if *persistent {
		ldb, err := storage.NewLevelDB(cfg.DataDir)
		if err != nil {
			logger.Error("failed to open database", "error", err, "dir", cfg.DataDir)
			os.Exit(1)
		}
		db = ldb
	} else {
		db = storage.NewMemDB()
	}
	defer db.Close()

	manager := nftstate.NewManager(db)

	tokens := token.NewEngine()
	tokens.SetState(manager)

	registry := metadata.NewRegistry(metadataProgramID)
	registry.SetState(manager)

	engine := market.NewEngine(market.ProgramConfig{
		ProgramID:         programID,
		MetadataProgramID: metadataProgramID,
	})
	engine.SetState(manager)
	engine.SetTokens(tokens)
	engine.SetMetadata(registry)
	engine.SetPauses(manager)
	engine.SetEmitter(logEmitter{logger: logger})

	// The driver controls the ledger clock so the auction scenario does not
	// have to wait in real time.
	clock := int64(1_000)
	engine.SetNowFunc(func() int64 { return clock })

	if err := run(logger, engine, tokens, registry, &clock); err != nil {
		logger.Error("scenario failed", "error", err)
		os.Exit(1)
	}
}

// run sequences the end-to-end scenario: a fixed-price sale with revenue
// split withdrawals, then a timed auction with an outbid refund and a claim.
func run(logger *slog.Logger, engine *market.Engine, tokens *token.Engine, registry *metadata.Registry, clock *int64) error {
	creator, err := newWallet()
	if err != nil {
		return err
	}
	bidder, err := newWallet()
	if err != nil {
		return err
	}
	logger.Info("wallets ready", "creator", hexAddr(creator), "bidder", hexAddr(bidder))

	// Payment mint plus funded accounts for both parties.
	saleMint := newID("sale-mint", creator[:])
	if _, err := tokens.CreateMint(saleMint, creator, 9); err != nil {
		return err
	}
	creatorPay := newID("pay", creator[:])
	bidderPay := newID("pay", bidder[:])
	if _, err := tokens.CreateAccount(creatorPay, saleMint, creator); err != nil {
		return err
	}
	if _, err := tokens.CreateAccount(bidderPay, saleMint, bidder); err != nil {
		return err
	}
	for _, acct := range [][32]byte{creatorPay, bidderPay} {
		if err := tokens.MintTo(saleMint, acct, big.NewInt(1000), creator); err != nil {
			return err
		}
	}

	poolID := newID("pool", creator[:])
	if _, err := engine.InitPool(creator, poolID, saleMint); err != nil {
		return err
	}
	logger.Info("pool initialized", "pool", hexID(poolID))

	// Mint the NFT and register its metadata; the creators double as the
	// revenue-distribution list.
	nftMint := newID("nft-mint", creator[:])
	if _, err := tokens.CreateMint(nftMint, creator, 0); err != nil {
		return err
	}
	creatorAsset := newID("asset", creator[:])
	if _, err := tokens.CreateAccount(creatorAsset, nftMint, creator); err != nil {
		return err
	}
	if err := tokens.MintTo(nftMint, creatorAsset, big.NewInt(1), creator); err != nil {
		return err
	}
	if _, err := registry.Register(nftMint, &metadata.Metadata{
		Name:         "nft",
		Symbol:       "coff",
		URI:          "https://arweave.net/a03hkxJcMxG4DR-VtkE0WMMXL8-NWluV9-IU5RtMFKc",
		SellerFeeBps: 300,
		IsMutable:    true,
		Creators: []metadata.Creator{
			{Address: creator, Share: 90},
			{Address: bidder, Share: 10},
		},
	}); err != nil {
		return err
	}

	if _, err := engine.InitSaleManager(creator, poolID, nftMint); err != nil {
		return err
	}

	// Fixed-price sale at 100, distribution taken from metadata creators.
	pot, err := engine.SellNFT(creator, poolID, nftMint, creatorAsset, big.NewInt(100), nil)
	if err != nil {
		return err
	}
	logger.Info("listed fixed price", "pot", hexID(pot.Address), "price", pot.Price)

	bidderAsset := newID("asset", bidder[:])
	if _, err := tokens.CreateAccount(bidderAsset, nftMint, bidder); err != nil {
		return err
	}
	if err := engine.BuyNFT(bidder, poolID, nftMint, bidderAsset, bidderPay); err != nil {
		return err
	}
	if err := displayBalances(logger, tokens, creatorPay, bidderPay); err != nil {
		return err
	}

	for _, w := range []struct {
		addr [20]byte
		acct [32]byte
	}{{creator, creatorPay}, {bidder, bidderPay}} {
		paid, err := engine.WithdrawFund(w.addr, pot.Address, w.acct)
		if err != nil {
			return err
		}
		logger.Info("withdrawn", "recipient", hexAddr(w.addr), "amount", paid)
	}
	if err := displayBalances(logger, tokens, creatorPay, bidderPay); err != nil {
		return err
	}

	// The new owner re-lists the asset by auction.
	auction, err := engine.SellNFTByAuction(bidder, poolID, nftMint, bidderAsset, big.NewInt(100), 30, nil)
	if err != nil {
		return err
	}
	logger.Info("auction opened", "auction", hexID(auction.Address), "endTime", auction.EndTime)

	if err := engine.PlaceBid(creator, poolID, nftMint, creatorPay, big.NewInt(120)); err != nil {
		return err
	}
	logger.Info("bid placed", "bidder", hexAddr(creator), "price", 120)

	// Fast-forward the ledger clock past the auction end.
	*clock += 31

	mgr, err := engine.SaleManager(poolID, nftMint)
	if err != nil {
		return err
	}
	if err := engine.ClaimBid(creator, poolID, nftMint, creatorAsset); err != nil {
		return err
	}
	logger.Info("auction claimed", "winner", hexAddr(creator))

	for _, w := range []struct {
		addr [20]byte
		acct [32]byte
	}{{creator, creatorPay}, {bidder, bidderPay}} {
		paid, err := engine.WithdrawFund(w.addr, mgr.EscrowPot, w.acct)
		if err != nil {
			return err
		}
		logger.Info("withdrawn", "recipient", hexAddr(w.addr), "amount", paid)
	}
	return displayBalances(logger, tokens, creatorPay, bidderPay)
}

// newWallet generates a fresh ecdsa key and returns its wallet address. The
// driver only needs the address; signing is not part of the scenario.
func newWallet() ([20]byte, error) {
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		return [20]byte{}, fmt.Errorf("generate key: %w", err)
	}
	return ethcrypto.PubkeyToAddress(key.PublicKey), nil
}

func newID(seed string, parts ...[]byte) [32]byte {
	data := [][]byte{[]byte(seed)}
	data = append(data, parts...)
	return ethcrypto.Keccak256Hash(data...)
}

func displayBalances(logger *slog.Logger, tokens *token.Engine, accts ...[32]byte) error {
	for _, acct := range accts {
		balance, err := tokens.Balance(acct)
		if err != nil {
			return err
		}
		logger.Info("balance", "account", hexID(acct), "amount", balance)
	}
	return nil
}

func hexAddr(a [20]byte) string { return hex.EncodeToString(a[:]) }

func hexID(a [32]byte) string { return hex.EncodeToString(a[:]) }
