package api

import (
	"encoding/json"
	"io"
	"net/http"

	"balloting-backend/errors"
	"balloting-backend/models"
)

func (s *Server) PostRegisterMemberHandler(w http.ResponseWriter, r *http.Request) {
	s.postOperation(w, r, models.OpRegisterMember)
}

func (s *Server) PostNominationHandler(w http.ResponseWriter, r *http.Request) {
	s.postOperation(w, r, models.OpNominateMember)
}

func (s *Server) PostVoteHandler(w http.ResponseWriter, r *http.Request) {
	s.postOperation(w, r, models.OpVote)
}

func (s *Server) PostStartVotingHandler(w http.ResponseWriter, r *http.Request) {
	s.postOperation(w, r, models.OpStartVoting)
}

func (s *Server) PostEndVotingHandler(w http.ResponseWriter, r *http.Request) {
	s.postOperation(w, r, models.OpEndVoting)
}

// postOperation decodes a signed operation of the expected type and waits
// for the queue to commit it.
func (s *Server) postOperation(w http.ResponseWriter, r *http.Request, expected models.OperationType) {
	defer r.Body.Close()

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize))
	if err != nil {
		WriteJSONError(w, errors.BadRequestParameter.Clone().SetData("error", err.Error()))
		return
	}

	var signed models.SignedOperation
	if err := json.Unmarshal(body, &signed); err != nil {
		WriteJSONError(w, errors.BadRequestParameter.Clone().SetData("error", err.Error()))
		return
	}

	if signed.Operation.Type != expected {
		WriteJSONError(w, errors.InvalidOperation.Clone().
			SetData("expected", string(expected)).
			SetData("type", string(signed.Operation.Type)))
		return
	}

	receipt, err := s.queue.Execute(r.Context(), signed)
	if err != nil {
		log.Debug(
			"operation failed",
			"id", r.Header.Get(RequestIDHeader),
			"op", signed.Operation.String(),
			"error", err,
		)
		WriteJSONError(w, err)
		return
	}

	MustWriteJSON(w, http.StatusOK, receipt)
}
