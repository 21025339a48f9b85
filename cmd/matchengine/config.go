package main

import "github.com/shopspring/decimal"

// symbolCfg is the on-disk shape of one tick/lot table entry; mapped to
// engine.SymbolConfig after viper unmarshals the decimal strings.
type symbolCfg struct {
	Symbol string `mapstructure:"symbol"`
	Tick   string `mapstructure:"tick"`
	Lot    string `mapstructure:"lot"`
}

// cfg is the root config shape loaded by pkg/config.LoadAndWatch,
// grounded on the teacher's per-service Cfg structs (e.g.
// internal/funds.Cfg) but trimmed to this engine's own concerns: no
// DB/Redis/etcd/OTel sections survive since this engine has none of
// those dependencies.
type cfg struct {
	Name string `mapstructure:"name"`

	HTTP struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"http"`

	WS struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"ws"`

	NATS struct {
		Enabled bool   `mapstructure:"enabled"`
		URL     string `mapstructure:"url"`
	} `mapstructure:"nats"`

	BookDepth         int         `mapstructure:"book_depth"`
	TradeHistoryDepth int         `mapstructure:"trade_history_depth"`
	FanoutQueueDepth  int         `mapstructure:"fanout_queue_depth"`
	Symbols           []symbolCfg `mapstructure:"symbols"`
	LogLevel          string      `mapstructure:"log_level"`
}

func (c symbolCfg) decimal() (tick, lot decimal.Decimal, err error) {
	tick, err = decimal.NewFromString(c.Tick)
	if err != nil {
		return
	}
	lot, err = decimal.NewFromString(c.Lot)
	return
}
