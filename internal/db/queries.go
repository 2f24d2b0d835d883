package db

// Procedimientos almacenados de la base Gestion
const (
	PROC_INFORME_ALTAS        = "Will_ObtenerDatosParaInforme2024V3"
	PROC_INFORME_CATEGORIA    = "Will_ObtenerDatosParaInforme2024V4"
	PROC_NOVEDADES_BENEFICIOS = "Will_novedades_altasv1"
	PROC_MOVIMIENTOS_OPERADOR = "Will_ObtenerMovimientos_por_operador"
)

// Nombres de parámetros de los procedimientos, en orden posicional
const (
	PARAM_FECHA_INICIO    = "FechaInicio"
	PARAM_FECHA_FIN       = "FechaFin"
	PARAM_CODIGO_OPERADOR = "CodigoOperador"
	PARAM_LETRA           = "Letra"
)

// SELECT_OPERADORES_V_PERSONAL_JUB obtiene el lookup (Codigo, descripcion) para el filtro de operadores
const SELECT_OPERADORES_V_PERSONAL_JUB = `
	SELECT Codigo, descripcion
	FROM v_personal_jub
	ORDER BY descripcion
`
