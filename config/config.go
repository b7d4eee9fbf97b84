package config

import (
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

// BaseConfig is loaded from app.json, then environment overrides
type BaseConfig struct {
	App         App         `koanf:"app" json:"app"`
	Persistence Persistence `koanf:"persistence" json:"persistence"`
	Auth        Auth        `koanf:"auth" json:"auth"`
	Views       Views       `koanf:"views" json:"views"`
}

type App struct {
	Name          string `koanf:"name" json:"name"`
	Address       string `koanf:"address" json:"address"`
	MountPath     string `koanf:"mount_path" json:"mount_path"`
	Debug         bool   `koanf:"debug" json:"debug"`
	HashidIDs     bool   `koanf:"hashid_ids" json:"hashid_ids"`
	ResetLinkBase string `koanf:"reset_link_base" json:"reset_link_base"`
}

type Persistence struct {
	Debug                 bool   `koanf:"debug" json:"debug"`
	Driver                string `koanf:"driver" json:"driver"`
	Server                string `koanf:"server" json:"server"`
	DSN                   string `koanf:"dsn" json:"dsn"`
	PingTimeoutExpression string `koanf:"ping_timeout" json:"ping_timeout"`
	OtelIdentifier        string `koanf:"otel_identifier" json:"otel_identifier"`
	Seed                  bool   `koanf:"seed" json:"seed"`
}

type Auth struct {
	SigningKey            string   `koanf:"signing_key" json:"signing_key"`
	SigningMethod         string   `koanf:"signing_method" json:"signing_method"`
	ContextKey            string   `koanf:"context_key" json:"context_key"`
	TokenExpiration       int      `koanf:"token_expiration" json:"token_expiration"`
	ExtendedTokenDuration int      `koanf:"extended_token_duration" json:"extended_token_duration"`
	TokenLookup           string   `koanf:"token_lookup" json:"token_lookup"`
	AuthScheme            string   `koanf:"auth_scheme" json:"auth_scheme"`
	Issuer                string   `koanf:"issuer" json:"issuer"`
	Audience              []string `koanf:"audience" json:"audience"`
	RejectedRouteKey      string   `koanf:"rejected_route_key" json:"rejected_route_key"`
	RejectedRouteDefault  string   `koanf:"rejected_route_default" json:"rejected_route_default"`
}

type Views struct {
	Dir       string `koanf:"dir" json:"dir"`
	Extension string `koanf:"extension" json:"extension"`
	Reload    bool   `koanf:"reload" json:"reload"`
	Embed     bool   `koanf:"embed" json:"embed"`
}

func (c BaseConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.App),
		validation.Field(&c.Persistence),
		validation.Field(&c.Auth),
	)
}

func (c *BaseConfig) GetApp() *App {
	return &c.App
}

func (c *BaseConfig) GetPersistence() *Persistence {
	return &c.Persistence
}

func (c *BaseConfig) GetAuth() *Auth {
	return &c.Auth
}

func (c *BaseConfig) GetViews() *Views {
	return &c.Views
}

func (a App) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.Address, validation.Required),
		validation.Field(&a.MountPath, validation.Required),
	)
}

func (a App) GetName() string {
	return a.Name
}

func (a App) GetAddress() string {
	return a.Address
}

func (a App) GetMountPath() string {
	return "/" + strings.Trim(a.MountPath, "/")
}

func (a App) GetDebug() bool {
	return a.Debug
}

func (a App) GetHashidIDs() bool {
	return a.HashidIDs
}

func (a App) GetResetLinkBase() string {
	return strings.TrimRight(a.ResetLinkBase, "/")
}

func (p Persistence) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Driver, validation.Required, validation.In("sqlite", "postgres")),
		validation.Field(&p.DSN, validation.Required),
	)
}

func (p Persistence) GetDebug() bool {
	return p.Debug
}

func (p Persistence) GetDriver() string {
	return p.Driver
}

func (p Persistence) GetServer() string {
	return p.Server
}

func (p Persistence) GetDSN() string {
	return p.DSN
}

func (p Persistence) GetOtelIdentifier() string {
	return p.OtelIdentifier
}

func (p Persistence) GetSeed() bool {
	return p.Seed
}

func (p Persistence) GetPingTimeout() time.Duration {
	if p.PingTimeoutExpression == "" {
		return time.Second * 5
	}

	dur, err := time.ParseDuration(p.PingTimeoutExpression)
	if err != nil {
		panic(
			fmt.Sprintf("unable to parse time: expr %s", p.PingTimeoutExpression),
		)
	}
	return dur
}

func (a Auth) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.SigningKey, validation.Required, validation.Length(16, 0)),
		validation.Field(&a.ContextKey, validation.Required),
	)
}

func (a Auth) GetSigningKey() string {
	return a.SigningKey
}

func (a Auth) GetSigningMethod() string {
	return a.SigningMethod
}

func (a Auth) GetContextKey() string {
	return a.ContextKey
}

func (a Auth) GetTokenExpiration() int {
	return a.TokenExpiration
}

func (a Auth) GetExtendedTokenDuration() int {
	return a.ExtendedTokenDuration
}

func (a Auth) GetTokenLookup() string {
	return a.TokenLookup
}

func (a Auth) GetAuthScheme() string {
	return a.AuthScheme
}

func (a Auth) GetIssuer() string {
	return a.Issuer
}

func (a Auth) GetAudience() []string {
	return a.Audience
}

func (a Auth) GetRejectedRouteKey() string {
	return a.RejectedRouteKey
}

func (a Auth) GetRejectedRouteDefault() string {
	return a.RejectedRouteDefault
}

func (v Views) GetDir() string {
	if v.Dir == "" {
		return "views"
	}
	return v.Dir
}

func (v Views) GetExtension() string {
	if v.Extension == "" {
		return ".html"
	}
	return "." + strings.TrimPrefix(v.Extension, ".")
}

func (v Views) GetReload() bool {
	return v.Reload
}

func (v Views) GetEmbed() bool {
	return v.Embed
}
