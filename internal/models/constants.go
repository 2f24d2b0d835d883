package models

// Nombres de columnas que devuelven los procedimientos almacenados.
// Los gráficos dependen de estos nombres exactos (contrato implícito entre
// el procedimiento y la receta del gráfico).
const (
	COLUMNA_LETRA       = "letra"
	COLUMNA_OPERADOR    = "Operador"
	COLUMNA_CATEGORIA   = "Categoria"
	COLUMNA_CONTEO      = "Conteo"
	COLUMNA_ANIO        = "Anio"
	COLUMNA_MES         = "Mes"
	COLUMNA_DESCRIPCION = "Descripcion"
	COLUMNA_FECHA_ALTA  = "fech_alta"
	COLUMNA_TIPO        = "Tipo"
)

// Letras de expediente aceptadas por el filtro de operadores.
const (
	LETRA_TODAS = "T"
	LETRA_E     = "E"
	LETRA_K     = "K"
	LETRA_V     = "V"
)

// Formatos de fecha usados en la aplicación
const (
	// FORMATO_FECHA_PROCEDIMIENTO es el formato con el que se envían las fechas a SQL Server
	FORMATO_FECHA_PROCEDIMIENTO = "2006-01-02"
	// FORMATO_FECHA_ARCHIVO se usa en los nombres sugeridos de exportación
	FORMATO_FECHA_ARCHIVO = "20060102"
	// FORMATO_FECHA_ALTA es el formato de texto de la columna fech_alta (día-mes-año hora:minuto)
	FORMATO_FECHA_ALTA = "2-1-2006 15:04"
	// FORMATO_FECHA_HORA es la representación canónica de celdas de fecha/hora
	FORMATO_FECHA_HORA = "2006-01-02 15:04:05"
)

// Mensajes visibles para el usuario
const (
	MSG_SIN_DATOS   = "No se encontraron datos para las fechas seleccionadas."
	MSG_SIN_INFORME = "Primero debe generar un informe."
)
