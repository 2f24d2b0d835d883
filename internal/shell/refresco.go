package shell

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Tarea es el trabajo que repite el refresco (fetch + render)
type Tarea func(ctx context.Context) error

// Refresco repite una tarea a intervalo fijo mientras está activo.
// Si un tick llega con la ejecución anterior todavía en curso, ese tick se
// omite y se registra; los ticks nunca se encolan.
type Refresco struct {
	intervalo time.Duration
	tarea     Tarea

	mu     sync.Mutex
	cancel context.CancelFunc
	hecho  chan struct{}

	enCurso    atomic.Bool
	ejecutados atomic.Int64
	omitidos   atomic.Int64
	wg         sync.WaitGroup
}

// NuevoRefresco crea el temporizador detenido; intervalo <= 0 usa 60s
func NuevoRefresco(intervalo time.Duration, tarea Tarea) *Refresco {
	if intervalo <= 0 {
		intervalo = 60 * time.Second
	}
	return &Refresco{intervalo: intervalo, tarea: tarea}
}

// Iniciar arranca el temporizador; llamarlo estando activo no hace nada
func (r *Refresco) Iniciar(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.hecho = make(chan struct{})
	go r.run(ctx, r.hecho)

	log.Printf("🔄 Actualización automática iniciada (intervalo: %v)", r.intervalo)
}

// Detener frena el temporizador y espera la ejecución en curso
func (r *Refresco) Detener() {
	r.mu.Lock()
	cancel, hecho := r.cancel, r.hecho
	r.cancel, r.hecho = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-hecho
	r.wg.Wait()

	log.Println("🛑 Actualización automática detenida")
}

// Activo indica si el temporizador está corriendo
func (r *Refresco) Activo() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cancel != nil
}

func (r *Refresco) Intervalo() time.Duration {
	return r.intervalo
}

// Estadisticas retorna cuántas ejecuciones se completaron y cuántos ticks se omitieron
func (r *Refresco) Estadisticas() (ejecutados, omitidos int64) {
	return r.ejecutados.Load(), r.omitidos.Load()
}

func (r *Refresco) run(ctx context.Context, hecho chan struct{}) {
	defer close(hecho)
	defer func() {
		if p := recover(); p != nil {
			log.Printf("❌ PANIC en actualización automática: %v", p)
		}
	}()

	ticker := time.NewTicker(r.intervalo)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.disparar(ctx)
		}
	}
}

// disparar lanza la tarea salvo que la anterior siga en curso
func (r *Refresco) disparar(ctx context.Context) bool {
	if !r.enCurso.CompareAndSwap(false, true) {
		r.omitidos.Add(1)
		log.Println("⏭️  Tick de actualización omitido: la actualización anterior sigue en curso")
		return false
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.enCurso.Store(false)
		defer func() {
			if p := recover(); p != nil {
				log.Printf("❌ PANIC en tarea de actualización: %v", p)
			}
		}()

		inicio := time.Now()
		if err := r.tarea(ctx); err != nil {
			log.Printf("⚠️  Actualización automática con error: %v", err)
		} else {
			log.Printf("✅ Actualización automática completada en %v", time.Since(inicio))
		}
		r.ejecutados.Add(1)
	}()
	return true
}
