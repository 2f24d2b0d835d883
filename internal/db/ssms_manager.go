package db

import (
	"fmt"
	"log"
	"net/url"

	"github.com/WolfWilson/informes-jub/internal/config"

	_ "github.com/microsoft/go-mssqldb"
)

// sqlServerURL construye la cadena de conexión en formato URL, con encoding
// apropiado para caracteres especiales en usuario y contraseña.
// Sin usuario se usa autenticación integrada.
func sqlServerURL(cfg config.SQLServerConfig) string {
	query := url.Values{}
	if cfg.Database != "" {
		query.Add("database", cfg.Database)
	}
	if cfg.Encrypt != "" {
		query.Add("encrypt", cfg.Encrypt)
	}
	query.Add("TrustServerCertificate", fmt.Sprintf("%t", cfg.TrustCert))
	if cfg.AppName != "" {
		query.Add("app name", cfg.AppName)
	}
	if cfg.ConnectTimeout > 0 {
		query.Add("connection timeout", fmt.Sprintf("%d", cfg.ConnectTimeout))
	}

	u := &url.URL{
		Scheme:   "sqlserver",
		Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		RawQuery: query.Encode(),
	}
	if cfg.User != "" {
		if cfg.Password != "" {
			u.User = url.UserPassword(cfg.User, cfg.Password)
		} else {
			u.User = url.User(cfg.User)
		}
	}
	return u.String()
}

// candidatoSQLServer arma el candidato para los controladores "sqlserver" y "mssql"
// de go-mssqldb; ambos aceptan la misma cadena de conexión.
func candidatoSQLServer(driver string, cfg config.SQLServerConfig) Candidato {
	user := cfg.User
	if user == "" {
		user = "<integrada>"
	}

	log.Printf(
		"db: configuración %s -> host=%s:%d user=%s encrypt=%s database=%s",
		driver, cfg.Host, cfg.Port, user, cfg.Encrypt, visibleDatabase(cfg.Database),
	)

	return Candidato{
		Driver:      driver,
		DSN:         sqlServerURL(cfg),
		Dialecto:    DialectoPara(driver),
		Timeout:     cfg.GetConnectTimeoutDuration(),
		Descripcion: fmt.Sprintf("%s:%d/%s", cfg.Host, cfg.Port, visibleDatabase(cfg.Database)),
	}
}

func visibleDatabase(name string) string {
	if name == "" {
		return "<predeterminada>"
	}
	return name
}
