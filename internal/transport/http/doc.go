// Package http implements the HTTP handlers of the workbook service. Handlers
// stay thin: they parse and validate the request, call a service and render
// the result as JSON through go-chi/render.
//
// # Routes
//
//	POST /api/v1/runs                          upload a workbook (multipart "file")
//	GET  /api/v1/runs                          list runs, newest first
//	GET  /api/v1/runs/{runID}                  run manifest
//	GET  /api/v1/runs/{runID}/tables/{sheet}   one clean table (?format=csv)
//	GET  /api/v1/runs/{runID}/variance         ranked variance views
//	GET  /api/v1/runs/{runID}/analyses         analysis sub-tables
//	POST /api/v1/runs/{runID}/report           render the report ({"format":"html|pdf"})
//	GET  /api/v1/runs/{runID}/report           download a rendered report (?format=pdf)
//	GET  /api/v1/progress/{runID}              last progress event of a run
//	GET  /api/v1/layouts                       sheet layout (?format=yaml)
//	POST /api/v1/logs                          client-side log entries
//
// # Error Handling
//
// Service errors are mapped onto API errors and written as RFC 7807 problem
// details by errors.ErrorHandler:
//
//	{
//	    "type": "/errors/run/not-found",
//	    "title": "Not Found",
//	    "status": 404,
//	    "detail": "Run not found",
//	    "instance": "/api/v1/runs/20250930_142501_1a2b3c4d"
//	}
package http
