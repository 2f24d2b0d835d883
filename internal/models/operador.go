package models

import "strings"

// Operador es una entrada de la vista v_personal_jub
type Operador struct {
	Codigo      string `json:"codigo"`
	Descripcion string `json:"descripcion"`
}

// OperadoresDesdeTabla lee la tabla de lookup por posición: columna 0 es el
// código y columna 1 la descripción. Filas incompletas se descartan.
func OperadoresDesdeTabla(t Tabla) []Operador {
	if len(t.Columnas) < 2 {
		return nil
	}
	ops := make([]Operador, 0, len(t.Filas))
	for i := range t.Filas {
		codigo := strings.TrimSpace(t.Texto(i, 0))
		if codigo == "" {
			continue
		}
		ops = append(ops, Operador{
			Codigo:      codigo,
			Descripcion: strings.TrimSpace(t.Texto(i, 1)),
		})
	}
	return ops
}
