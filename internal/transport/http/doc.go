// Package http implements HTTP request handlers for the HPIC Pulse web
// service. It provides a thin layer between HTTP transport and the compute
// pipeline, keeping handlers focused solely on HTTP concerns.
//
// # Architecture Principles
//
// Handlers in this package follow these principles:
//
//	1. Thin handlers - minimal logic, delegate to services
//	2. HTTP-only concerns - request parsing, response formatting
//	3. Error transformation - convert service errors to HTTP responses
//	4. No business logic - all filtering and metric math belongs in the
//	   service and analytics layers
//
// # Request Flow
//
// A typical request flows through these layers:
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → Store
//	                                              ↓
//	HTTP Response ← Handler ← View Model ←────────┘
//
// # Handler Structure
//
// Each handler follows this pattern:
//
//	func (h *Handler) HandleSomething(w http.ResponseWriter, r *http.Request) {
//	    // 1. Bind and validate query parameters
//	    filters, err := h.bindFilters(r)
//	    if err != nil {
//	        h.errorHandler.HandleError(w, r, err)
//	        return
//	    }
//
//	    // 2. Call service layer
//	    view, err := h.service.Compute(r.Context(), filters)
//	    if err != nil {
//	        h.errorHandler.HandleError(w, r, err)
//	        return
//	    }
//
//	    // 3. Format and send response
//	    render.JSON(w, r, map[string]interface{}{"status": "success", "data": view})
//	}
//
// # Error Handling
//
// All errors follow RFC 7807 Problem Details specification:
//
//	{
//	    "type": "/errors/dataset/not-found",
//	    "title": "Data File Not Found",
//	    "status": 404,
//	    "detail": "membership_timeline.csv not found in any candidate location",
//	    "instance": "/api/dashboard"
//	}
//
// An empty filter result is NOT an error: the dashboard endpoints return
// HTTP 200 with view_state "no_data" and a warning string, and the page
// skips charts for that pass.
//
// # Testing
//
// Handlers are tested using httptest:
//
//	- Stub service dependencies
//	- Test various HTTP scenarios
//	- Verify problem bodies and status codes
package http
