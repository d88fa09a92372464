package chain

import (
	"context"
	"crypto/ecdsa"
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ghostfund/gfs/internal/config"
	"github.com/ghostfund/gfs/internal/logger"
	"github.com/ghostfund/gfs/internal/model"
)

// Service 链上转账服务
// 真实的合约交互尚未接入，当前通过节点探活加模拟回执的方式工作：
// 配置完整时每次调用先探测RPC节点，再生成模拟交易；配置不完整时
// 进入禁用模式，创建项目时跳过链上注册，出资路径则退化为纯模拟。
type Service struct {
	client       *ethclient.Client
	privateKey   *ecdsa.PrivateKey
	contractAddr common.Address
	timeout      time.Duration
	enabled      bool
}

// Registration 项目链上注册结果
type Registration struct {
	ProjectAddress  string `json:"project_address"`
	TransactionHash string `json:"transaction_hash"`
}

// Receipt 出资交易回执
type Receipt struct {
	Hash        string    `json:"hash"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	Value       float64   `json:"value"`
	BlockNumber uint64    `json:"block_number,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// New 创建链上转账服务
func New(cfg config.ChainConfig) (*Service, error) {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	s := &Service{timeout: timeout}

	if cfg.RpcUrl == "" || cfg.PrivateKey == "" || cfg.ContractAddress == "" {
		logger.Warn("Chain service is not fully configured, running in disabled mode")
		return s, nil
	}

	// 连接以太坊客户端
	client, err := ethclient.Dial(cfg.RpcUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ethereum client: %w", err)
	}

	// 解析私钥
	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	s.client = client
	s.privateKey = privateKey
	s.contractAddr = common.HexToAddress(cfg.ContractAddress)
	s.enabled = true

	logger.Info("Chain service initialized (contract: %s, wallet: %s)",
		s.contractAddr.Hex(), s.WalletAddress().Hex())

	return s, nil
}

// Enabled 链服务是否可用
func (s *Service) Enabled() bool {
	return s.enabled
}

// WalletAddress 获取服务端钱包地址
func (s *Service) WalletAddress() common.Address {
	if s.privateKey == nil {
		return common.Address{}
	}
	return crypto.PubkeyToAddress(s.privateKey.PublicKey)
}

// RegisterProject 在链上注册项目
// 返回项目合约地址和交易哈希。调用方在创建路径上将失败视为非致命。
func (s *Service) RegisterProject(ctx context.Context, project *model.Project) (*Registration, error) {
	if !s.enabled {
		return nil, fmt.Errorf("chain service is disabled")
	}

	if _, err := s.latestBlock(ctx); err != nil {
		return nil, fmt.Errorf("chain unavailable: %w", err)
	}

	addr, err := randomAddress()
	if err != nil {
		return nil, err
	}
	hash, err := randomHash()
	if err != nil {
		return nil, err
	}

	logger.Info("Registered project %s on chain (address: %s, tx: %s)", project.ID, addr, hash)

	return &Registration{
		ProjectAddress:  addr,
		TransactionHash: hash,
	}, nil
}

// ProcessFunding 处理一笔出资交易并返回回执
// 禁用模式下直接生成模拟回执；启用模式下先探测节点，探测失败则整笔出资失败。
func (s *Service) ProcessFunding(ctx context.Context, projectID string, amount float64, funderAddress string) (*Receipt, error) {
	receipt := &Receipt{
		From:      funderAddress,
		To:        s.contractAddr.Hex(),
		Value:     amount,
		Timestamp: time.Now(),
	}

	if s.enabled {
		block, err := s.latestBlock(ctx)
		if err != nil {
			return nil, fmt.Errorf("chain unavailable: %w", err)
		}
		receipt.BlockNumber = block
	}

	hash, err := randomHash()
	if err != nil {
		return nil, err
	}
	receipt.Hash = hash

	logger.Debug("Processed funding for project %s: %f from %s (tx: %s)",
		projectID, amount, funderAddress, hash)

	return receipt, nil
}

// latestBlock 获取最新区块号，调用受超时约束
func (s *Service) latestBlock(ctx context.Context) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	header, err := s.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, err
	}
	return header.Number.Uint64(), nil
}

// randomHash 生成模拟交易哈希
func randomHash() (string, error) {
	var b [common.HashLength]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("failed to generate transaction hash: %w", err)
	}
	return common.BytesToHash(b[:]).Hex(), nil
}

// randomAddress 生成模拟合约地址
func randomAddress() (string, error) {
	var b [common.AddressLength]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", fmt.Errorf("failed to generate contract address: %w", err)
	}
	return common.BytesToAddress(b[:]).Hex(), nil
}
