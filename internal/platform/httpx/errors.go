package httpx

import "net/http"

// RespondActionError returns the action envelope with a user-facing message.
// Admin forms consume these endpoints and render the error inline, so the
// status is always 200 and the failure travels as data.
func RespondActionError(w http.ResponseWriter, err error) {
	JSON(w, http.StatusOK, ActionResult{Error: err.Error()})
}

// BadRequest reports a malformed request as an RFC7807 problem. Domain
// failures use the action envelope instead; this path is for requests the
// handler could not even parse.
func BadRequest(w http.ResponseWriter, detail string) {
	Problem(w, http.StatusBadRequest, "Solicitud inválida", detail)
}
