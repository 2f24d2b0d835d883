package monitoring

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/WolfWilson/informes-jub/internal/db"
	"github.com/WolfWilson/informes-jub/internal/models"
)

// MonitorConexiones verifica periódicamente cada controlador de la lista de
// fallback. Solo observa: las consultas siguen abriendo su propia conexión.
type MonitorConexiones struct {
	ctx        context.Context
	cancel     context.CancelFunc
	candidatos []db.Candidato
	abrir      db.Abridor
	estados    []*models.EstadoControlador
	estadosMu  sync.RWMutex
	intervalo  time.Duration
}

// NuevoMonitorConexiones crea el monitor; abrir puede ser nil (db.AbrirYVerificar)
func NuevoMonitorConexiones(candidatos []db.Candidato, abrir db.Abridor, intervalo time.Duration) *MonitorConexiones {
	ctx, cancel := context.WithCancel(context.Background())
	if abrir == nil {
		abrir = db.AbrirYVerificar
	}
	if intervalo <= 0 {
		intervalo = 5 * time.Minute
	}

	estados := make([]*models.EstadoControlador, len(candidatos))
	for i, c := range candidatos {
		estados[i] = &models.EstadoControlador{
			Indice:      i,
			Driver:      c.Driver,
			Descripcion: c.Descripcion,
		}
	}

	return &MonitorConexiones{
		ctx:        ctx,
		cancel:     cancel,
		candidatos: candidatos,
		abrir:      abrir,
		estados:    estados,
		intervalo:  intervalo,
	}
}

// Start inicia el monitoreo (bloqueante, ejecutar en goroutine)
func (m *MonitorConexiones) Start() {
	log.Printf("🔄 Iniciando monitoreo de %d controlador(es) (intervalo: %v)", len(m.candidatos), m.intervalo)

	ticker := time.NewTicker(m.intervalo)
	defer ticker.Stop()

	// Primer chequeo inmediato
	m.Verificar(m.ctx)

	for {
		select {
		case <-m.ctx.Done():
			log.Println("🛑 Monitoreo de conexiones detenido")
			return
		case <-ticker.C:
			m.Verificar(m.ctx)
		}
	}
}

// Stop detiene el monitoreo
func (m *MonitorConexiones) Stop() {
	m.cancel()
}

// Verificar chequea todos los candidatos en paralelo y espera el resultado
func (m *MonitorConexiones) Verificar(ctx context.Context) {
	var wg sync.WaitGroup
	for i := range m.candidatos {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m.verificar(ctx, i)
		}(i)
	}
	wg.Wait()
}

func (m *MonitorConexiones) verificar(ctx context.Context, i int) {
	c := m.candidatos[i]
	inicio := time.Now()

	conn, err := m.abrir(ctx, c)
	elapsed := time.Since(inicio).Milliseconds()
	if conn != nil {
		conn.Close()
	}

	m.estadosMu.Lock()
	defer m.estadosMu.Unlock()

	estado := m.estados[i]
	estado.UltimoChequeo = time.Now()
	estado.TiempoRespuestaMs = elapsed

	if err != nil {
		estado.UltimoError = err.Error()
		// la primera falla también cuenta como caída
		if estado.Disponible || estado.UltimaCaida == nil {
			now := time.Now()
			estado.UltimaCaida = &now
			log.Printf("❌ Controlador sin respuesta: %s (%s) - Error: %v", c.Driver, c.Descripcion, err)
		}
		estado.Disponible = false
		return
	}

	if !estado.Disponible {
		log.Printf("✅ Controlador disponible: %s (%s) - Tiempo: %dms", c.Driver, c.Descripcion, elapsed)
	}
	estado.Disponible = true
	estado.UltimoError = ""
}

// Estados retorna una copia del estado de cada candidato, en el orden de fallback
func (m *MonitorConexiones) Estados() []models.EstadoControlador {
	m.estadosMu.RLock()
	defer m.estadosMu.RUnlock()

	result := make([]models.EstadoControlador, 0, len(m.estados))
	for _, e := range m.estados {
		result = append(result, *e)
	}
	return result
}

// Resumen cuenta los controladores disponibles y el primero que respondería
func (m *MonitorConexiones) Resumen() models.ResumenConexiones {
	m.estadosMu.RLock()
	defer m.estadosMu.RUnlock()

	resumen := models.ResumenConexiones{Controladores: len(m.estados)}
	for _, e := range m.estados {
		if !e.Disponible {
			continue
		}
		resumen.Disponibles++
		if resumen.Vigente == "" {
			resumen.Vigente = e.Driver
		}
	}
	return resumen
}
