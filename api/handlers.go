package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/lookbusy1344/slox/compiler"
	"github.com/lookbusy1344/slox/service"
	"github.com/lookbusy1344/slox/vm"
)

// handleOneShotRun handles POST /api/v1/run: compile and execute source
// without keeping a session around afterward.
func (s *Server) handleOneShotRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req RunRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := compiler.Compile(req.Source)
	if err != nil {
		writeJSON(w, http.StatusOK, RunResponse{Diagnostic: err.Error(), Success: false})
		return
	}

	var stdout, stderr bytes.Buffer
	if runErr := vm.Interpret(res.Chunk, res.Pool, &stdout, &stderr); runErr != nil {
		writeJSON(w, http.StatusOK, RunResponse{
			Stdout:     stdout.String(),
			Stderr:     stderr.String(),
			Diagnostic: runErr.Error(),
			Success:    false,
		})
		return
	}

	writeJSON(w, http.StatusOK, RunResponse{
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
		Success: true,
	})
}

// handleCreateSession handles POST /api/v1/session
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req SessionCreateRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := s.sessions.CreateSession(req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to create session: %v", err))
		return
	}

	writeJSON(w, http.StatusCreated, SessionCreateResponse{
		SessionID: session.ID,
		CreatedAt: session.CreatedAt,
	})
}

// handleListSessions handles GET /api/v1/session
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": s.sessions.ListSessions(),
	})
}

// handleGetSessionStatus handles GET /api/v1/session/{id}
func (s *Server) handleGetSessionStatus(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, SessionStatusResponse{
		SessionID: session.ID,
		State:     string(session.Service.GetExecutionState()),
		Line:      session.Service.CurrentLine(),
	})
}

// handleDestroySession handles DELETE /api/v1/session/{id}
func (s *Server) handleDestroySession(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := s.sessions.DestroySession(sessionID); err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// handleRun handles POST /api/v1/session/{id}/run: run to completion, a
// breakpoint, or a runtime error.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	if err := session.Service.Run(); err != nil {
		s.broadcastExecutionEvent(sessionID, "runtime_error", err.Error(), session.Service.CurrentLine())
		writeJSON(w, http.StatusOK, SessionStatusResponse{
			SessionID: session.ID,
			State:     string(session.Service.GetExecutionState()),
			Line:      session.Service.CurrentLine(),
			Error:     err.Error(),
		})
		return
	}

	s.broadcastStateChange(sessionID, session.Service)
	writeJSON(w, http.StatusOK, SessionStatusResponse{
		SessionID: session.ID,
		State:     string(session.Service.GetExecutionState()),
		Line:      session.Service.CurrentLine(),
	})
}

// handleStep handles POST /api/v1/session/{id}/step: execute one instruction.
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	halted, err := session.Service.Step()
	if err != nil {
		writeJSON(w, http.StatusOK, SessionStatusResponse{
			SessionID: session.ID,
			State:     string(session.Service.GetExecutionState()),
			Line:      session.Service.CurrentLine(),
			Error:     err.Error(),
		})
		return
	}

	s.broadcastStateChange(sessionID, session.Service)
	writeJSON(w, http.StatusOK, SessionStatusResponse{
		SessionID: session.ID,
		State:     string(session.Service.GetExecutionState()),
		Line:      session.Service.CurrentLine(),
		Error:     boolToHaltedNote(halted),
	})
}

func boolToHaltedNote(halted bool) string {
	if halted {
		return "halted"
	}
	return ""
}

// handleContinue handles POST /api/v1/session/{id}/continue: resume after
// a breakpoint stop.
func (s *Server) handleContinue(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	session.Service.Continue()
	if err := session.Service.Run(); err != nil {
		s.broadcastExecutionEvent(sessionID, "runtime_error", err.Error(), session.Service.CurrentLine())
		writeJSON(w, http.StatusOK, SessionStatusResponse{
			SessionID: session.ID,
			State:     string(session.Service.GetExecutionState()),
			Line:      session.Service.CurrentLine(),
			Error:     err.Error(),
		})
		return
	}

	s.broadcastStateChange(sessionID, session.Service)
	writeJSON(w, http.StatusOK, SessionStatusResponse{
		SessionID: session.ID,
		State:     string(session.Service.GetExecutionState()),
		Line:      session.Service.CurrentLine(),
	})
}

// handleGetDisassembly handles GET /api/v1/session/{id}/disassembly
func (s *Server) handleGetDisassembly(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	lines, err := session.Service.GetDisassembly()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, DisassemblyResponse{Lines: lines})
}

// handleGetConsoleOutput handles GET /api/v1/session/{id}/console
func (s *Server) handleGetConsoleOutput(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"stdout": session.Stdout.GetBuffer(),
		"stderr": session.Stderr.GetBuffer(),
	})
}

// handleBreakpoint handles POST/DELETE /api/v1/session/{id}/breakpoint
func (s *Server) handleBreakpoint(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var req BreakpointRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	switch r.Method {
	case http.MethodPost:
		bp := session.Service.AddBreakpoint(req.Line)
		writeJSON(w, http.StatusCreated, bp)
	case http.MethodDelete:
		if err := session.Service.RemoveBreakpoint(req.Line); err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleListBreakpoints handles GET/DELETE /api/v1/session/{id}/breakpoints
func (s *Server) handleListBreakpoints(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, BreakpointsResponse{Breakpoints: session.Service.GetBreakpoints()})
	case http.MethodDelete:
		session.Service.ClearAllBreakpoints()
		writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGetGlobals handles GET /api/v1/session/{id}/globals
func (s *Server) handleGetGlobals(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, GlobalsResponse{Globals: session.Service.GetGlobals()})
}

// handleGetStack handles GET /api/v1/session/{id}/stack
func (s *Server) handleGetStack(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, StackResponse{Stack: session.Service.GetStack()})
}

// handleGetConfig handles GET /api/v1/config
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, defaultAPIConfig())
}

// handleUpdateConfig handles PUT /api/v1/config. Sessions take no
// configuration (NewDebuggerService has no config parameter), so this
// endpoint only validates the body as JSON and acknowledges it; nothing is
// stored or applied.
func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var cfg map[string]interface{}
	if err := readJSON(r, &cfg); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

func defaultAPIConfig() map[string]interface{} {
	return map[string]interface{}{
		"execution": map[string]interface{}{
			"max_steps":      10_000_000,
			"stack_capacity": 256,
			"enable_trace":   false,
		},
		"debugger": map[string]interface{}{
			"history_size": 1000,
			"show_source":  true,
			"show_stack":   true,
			"show_globals": true,
		},
		"display": map[string]interface{}{
			"color_output":   true,
			"disasm_context": 5,
			"source_context": 5,
		},
	}
}

// broadcastStateChange broadcasts the session's current execution state to
// WebSocket subscribers.
func (s *Server) broadcastStateChange(sessionID string, svc *service.DebuggerService) {
	if s.broadcaster == nil {
		return
	}

	s.broadcaster.BroadcastState(sessionID, StateEvent{
		State: string(svc.GetExecutionState()),
		Line:  svc.CurrentLine(),
	})
}

// broadcastExecutionEvent broadcasts a debugger-level occurrence (breakpoint
// hit, runtime error) to WebSocket subscribers.
func (s *Server) broadcastExecutionEvent(sessionID, eventName, message string, line int) {
	if s.broadcaster == nil {
		return
	}

	s.broadcaster.BroadcastExecutionEvent(sessionID, ExecutionEvent{
		Event:   eventName,
		Message: message,
		Line:    line,
	})
}
