package app

import (
	"fmt"

	"github.com/agentnet/ant-orchestrator/internal/config"
	"github.com/agentnet/ant-orchestrator/internal/gateway/model"
	"github.com/agentnet/ant-orchestrator/internal/gateway/resolver"
	"github.com/agentnet/ant-orchestrator/internal/gateway/web"
	"github.com/agentnet/ant-orchestrator/internal/platform/logger"
)

type Gateways struct {
	Resolver resolver.Gateway
	Web      web.Gateway
	Model    model.Gateway
}

func wireGateways(cfg *config.Config, log *logger.Logger) (Gateways, error) {
	log.Info("Wiring gateways...")

	res, err := resolver.New(cfg, log)
	if err != nil {
		return Gateways{}, fmt.Errorf("init resolver gateway: %w", err)
	}
	w, err := web.New(cfg, log)
	if err != nil {
		return Gateways{}, fmt.Errorf("init web gateway: %w", err)
	}
	m, err := model.New(cfg, log)
	if err != nil {
		return Gateways{}, fmt.Errorf("init model gateway: %w", err)
	}
	return Gateways{Resolver: res, Web: w, Model: m}, nil
}
