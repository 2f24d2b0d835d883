package web

import (
	"fmt"
	"html"
	"net/http"
	"time"
)

// PaginaHandler sirve la página de informes: selección de informe y fechas,
// filtro de operador, tabla del informe vigente, gráfico y actualización automática.
// Todo el contenido dinámico llega por /api/* y por el WebSocket de la room "informes".
func PaginaHandler(titulo string, intervalo time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")

		fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="es">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>%s</title>
	<style>
		body {
			font-family: 'Segoe UI', Arial, sans-serif;
			background: linear-gradient(120deg, #e0eafc 0%%, #cfdef3 100%%);
			margin: 0;
			padding: 0;
		}
		.container {
			max-width: 1280px;
			margin: 24px auto;
			background: #fff;
			border-radius: 16px;
			box-shadow: 0 4px 24px rgba(0,0,0,0.08);
			padding: 24px;
		}
		h1 {
			text-align: center;
			color: #2a5298;
			margin-bottom: 24px;
		}
		.filtros {
			display: flex;
			flex-wrap: wrap;
			gap: 12px;
			align-items: end;
			margin-bottom: 16px;
		}
		.filtros label {
			display: flex;
			flex-direction: column;
			font-size: 0.9em;
			color: #444;
		}
		button {
			background: #2a5298;
			color: #fff;
			border: none;
			border-radius: 6px;
			padding: 8px 14px;
			cursor: pointer;
		}
		button:disabled { background: #90a4ae; }
		.oculto { display: none !important; }
		.tabla {
			max-height: 360px;
			overflow: auto;
			margin-bottom: 16px;
		}
		table {
			width: 100%%;
			border-collapse: collapse;
		}
		th, td {
			padding: 6px 8px;
			text-align: left;
			white-space: nowrap;
		}
		th {
			background: #2a5298;
			color: #fff;
			position: sticky;
			top: 0;
		}
		tr:nth-child(even) { background: #f4f8fb; }
		tr:hover { background: #e0eafc; }
		.mensaje { min-height: 1.4em; font-weight: bold; }
		.error { color: #d32f2f; }
		.ok { color: #388e3c; }
		#grafico { max-width: 100%%; border: 1px solid #e0eafc; border-radius: 8px; }
	</style>
</head>
<body>
	<div class="container">
		<h1>%s</h1>
		<div class="filtros">
			<label>Desde <input type="date" id="desde"></label>
			<label>Hasta <input type="date" id="hasta"></label>
			<label>Informe <select id="informe"></select></label>
			<label id="filtroOperador" class="oculto">Operador <select id="operador"></select></label>
			<label id="filtroLetra" class="oculto">Letra <select id="letra"></select></label>
			<button id="generar">Generar Informe</button>
			<button id="excel">Exportar a Excel</button>
		</div>
		<div class="filtros">
			<label>Gráfico <select id="tipoGrafico"></select></label>
			<button id="verGrafico">Ver Gráfico</button>
			<button id="descargarGrafico">Exportar Gráfico</button>
			<label><span><input type="checkbox" id="auto"> Actualización automática (cada %d s)</span></label>
		</div>
		<div id="mensaje" class="mensaje"></div>
		<div class="tabla"><table id="tabla"></table></div>
		<img id="grafico" class="oculto" alt="gráfico">
	</div>
	<script>
	const $ = (id) => document.getElementById(id);
	let catalogo = [];

	function mostrar(texto, ok) {
		$("mensaje").textContent = texto || "";
		$("mensaje").className = "mensaje " + (ok ? "ok" : "error");
	}

	async function pedir(url, opciones) {
		const r = await fetch(url, opciones);
		const cuerpo = await r.json();
		if (!cuerpo.success) { throw new Error(cuerpo.error.message); }
		return cuerpo.data;
	}

	function dibujarTabla(t) {
		const tabla = $("tabla");
		tabla.innerHTML = "";
		if (!t || !t.columnas) { return; }
		const cab = tabla.insertRow();
		t.columnas.forEach(c => { const th = document.createElement("th"); th.textContent = c; cab.appendChild(th); });
		(t.filas || []).forEach(f => {
			const tr = tabla.insertRow();
			f.forEach(v => { tr.insertCell().textContent = v; });
		});
	}

	function actualizarMenu() {
		const info = catalogo.find(i => i.id === $("informe").value);
		const esOperadores = info && info.id === "operadores";
		$("filtroOperador").classList.toggle("oculto", !esOperadores);
		$("filtroLetra").classList.toggle("oculto", !esOperadores);
		const sel = $("tipoGrafico");
		sel.innerHTML = "";
		(info ? info.graficos : []).forEach(g => sel.add(new Option(g.etiqueta, g.id)));
		$("verGrafico").disabled = sel.options.length === 0;
		$("descargarGrafico").disabled = sel.options.length === 0;
	}

	async function verGrafico() {
		const g = $("tipoGrafico").value;
		if (!g) { return; }
		const r = await fetch("/api/graficos/" + g + "?t=" + Date.now());
		if (!r.ok) { mostrar((await r.json()).error.message, false); $("grafico").classList.add("oculto"); return; }
		$("grafico").src = URL.createObjectURL(await r.blob());
		$("grafico").classList.remove("oculto");
	}

	async function generar() {
		mostrar("");
		try {
			const t = await pedir("/api/informes/generar", {
				method: "POST",
				headers: {"Content-Type": "application/json"},
				body: JSON.stringify({
					informe: $("informe").value,
					fecha_inicio: $("desde").value,
					fecha_fin: $("hasta").value,
					operador: $("operador").value,
					letra: $("letra").value,
				}),
			});
			dibujarTabla(t);
			mostrar(t.filas.length + " filas", true);
		} catch (e) {
			dibujarTabla(null);
			$("grafico").classList.add("oculto");
			mostrar(e.message, false);
		}
	}

	async function iniciar() {
		const hoy = new Date().toISOString().slice(0, 10);
		$("desde").value = hoy;
		$("hasta").value = hoy;

		const datos = await pedir("/api/informes");
		catalogo = datos.informes;
		catalogo.forEach(i => $("informe").add(new Option(i.etiqueta, i.id)));
		datos.letras.forEach(l => $("letra").add(new Option(l === "T" ? "Todas" : l, l)));
		try {
			(await pedir("/api/operadores")).forEach(o => $("operador").add(new Option(o.codigo + " - " + o.descripcion, o.codigo)));
		} catch (e) { mostrar(e.message, false); }
		actualizarMenu();

		$("informe").onchange = actualizarMenu;
		$("generar").onclick = generar;
		$("verGrafico").onclick = verGrafico;
		$("excel").onclick = () => { window.location = "/api/informes/actual/excel"; };
		$("descargarGrafico").onclick = () => { window.location = "/api/graficos/" + $("tipoGrafico").value + "/descargar"; };
		$("auto").onchange = async () => {
			try {
				await pedir("/api/refresco", {
					method: "POST",
					headers: {"Content-Type": "application/json"},
					body: JSON.stringify({activo: $("auto").checked, grafico: $("tipoGrafico").value}),
				});
			} catch (e) { $("auto").checked = false; mostrar(e.message, false); }
		};

		const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws/informes");
		ws.onmessage = async (ev) => {
			const msg = JSON.parse(ev.data);
			if (msg.type !== "informe_actualizado") { return; }
			if (msg.data.mensaje) { dibujarTabla(null); mostrar(msg.data.mensaje, false); return; }
			try { dibujarTabla(await pedir("/api/informes/actual")); } catch (e) { mostrar(e.message, false); }
			if (msg.data.grafico) { await verGrafico(); }
		};
	}

	iniciar();
	</script>
</body>
</html>`, html.EscapeString(titulo), html.EscapeString(titulo), int(intervalo.Seconds()))
	}
}
