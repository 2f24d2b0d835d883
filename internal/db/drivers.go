package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// ErrSinConexion indica que ningún controlador de la lista pudo conectarse
var ErrSinConexion = errors.New("db: no fue posible conectar con ningún controlador")

// Candidato es una entrada de la lista de fallback: un controlador de
// database/sql, su cadena de conexión y el dialecto para invocar procedimientos.
type Candidato struct {
	Driver   string
	DSN      string
	Dialecto Dialecto
	Timeout  time.Duration
	// Descripcion se usa en logs en lugar del DSN (que puede contener credenciales)
	Descripcion string
}

// Intento registra el fallo de un candidato
type Intento struct {
	Driver string
	Err    error
}

// SinConexionError es el fallo tipado que se retorna cuando se agota la lista
type SinConexionError struct {
	Operacion string
	Intentos  []Intento
}

func (e *SinConexionError) Error() string {
	if len(e.Intentos) == 0 {
		return fmt.Sprintf("%s (%s): no hay controladores configurados", ErrSinConexion.Error(), e.Operacion)
	}
	partes := make([]string, 0, len(e.Intentos))
	for _, in := range e.Intentos {
		partes = append(partes, fmt.Sprintf("%s: %v", in.Driver, in.Err))
	}
	return fmt.Sprintf("%s (%s): %s", ErrSinConexion.Error(), e.Operacion, strings.Join(partes, "; "))
}

// Is permite errors.Is(err, ErrSinConexion)
func (e *SinConexionError) Is(target error) bool {
	return target == ErrSinConexion
}

// Abridor abre y valida una conexión; se inyecta para poder probar la
// estrategia de fallback sin una base de datos real.
type Abridor func(ctx context.Context, c Candidato) (*sql.DB, error)

// AbrirYVerificar es el Abridor por defecto: sql.Open + PingContext con timeout
func AbrirYVerificar(ctx context.Context, c Candidato) (*sql.DB, error) {
	db, err := sql.Open(c.Driver, c.DSN)
	if err != nil {
		return nil, fmt.Errorf("db: no fue posible abrir %s: %w", c.Driver, err)
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db: no fue posible conectarse usando %s: %w", c.Driver, err)
	}

	// Una conexión por llamada, sin pool
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(0)
	return db, nil
}

// Conexion es la conexión obtenida del primer candidato exitoso
type Conexion struct {
	DB        *sql.DB
	Candidato Candidato
	// Indice es la posición del candidato dentro de la lista recibida
	Indice int
	// Fallidos contiene los candidatos anteriores que no pudieron conectar
	Fallidos []Intento
}

// Close cierra la conexión; es seguro llamarlo sobre nil
func (c *Conexion) Close() error {
	if c == nil || c.DB == nil {
		return nil
	}
	return c.DB.Close()
}

// Conectar recorre los candidatos en orden y retorna la primera conexión exitosa.
// Si todos fallan retorna *SinConexionError con el detalle de cada intento.
func Conectar(ctx context.Context, candidatos []Candidato, abrir Abridor) (*Conexion, error) {
	if abrir == nil {
		abrir = AbrirYVerificar
	}

	var fallidos []Intento
	for i, c := range candidatos {
		if err := ctx.Err(); err != nil {
			fallidos = append(fallidos, Intento{Driver: c.Driver, Err: err})
			break
		}

		log.Printf("🔄 Intentando conectar usando el controlador: %s (%s)", c.Driver, c.Descripcion)
		db, err := abrir(ctx, c)
		if err != nil {
			log.Printf("⚠️  Error al conectar usando el controlador %s: %v", c.Driver, describirError(err))
			fallidos = append(fallidos, Intento{Driver: c.Driver, Err: err})
			continue
		}

		log.Printf("✅ Conexión establecida con %s", c.Driver)
		return &Conexion{DB: db, Candidato: c, Indice: i, Fallidos: fallidos}, nil
	}

	return nil, &SinConexionError{Operacion: "conectar", Intentos: fallidos}
}
