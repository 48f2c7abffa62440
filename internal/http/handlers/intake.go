package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"scribe/internal/orchestrator"
)

const maxBodyBytes = 10 << 20

type pushEnvelope struct {
	Message struct {
		Data       []byte            `json:"data"`
		MessageID  string            `json:"messageId"`
		Attributes map[string]string `json:"attributes"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// PubSubPush accepts a Pub/Sub push delivery. Any 2xx acks the message, so
// only outcomes that need redelivery answer 503.
func (a *App) PubSubPush(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		a.Logger.Error().Err(err).Msg("http: read push body")
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	var env pushEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		a.Logger.Error().Err(err).Msg("http: dropping malformed push envelope")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	a.extendWriteDeadline(w, 1)
	res := a.Processor.Handle(r.Context(), orchestrator.Delivery{
		MessageID: env.Message.MessageID,
		Body:      env.Message.Data,
	})
	if res.Outcome.Redeliver() {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type batchRequest struct {
	Records []struct {
		MessageID string `json:"message_id"`
		Body      string `json:"body"`
	} `json:"records"`
}

type itemFailure struct {
	ItemIdentifier string `json:"itemIdentifier"`
}

type batchResponse struct {
	BatchItemFailures []itemFailure `json:"batchItemFailures"`
}

// Batches processes a batch of records sequentially and returns the ids that
// should be redelivered.
func (a *App) Batches(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		a.json(w, http.StatusBadRequest, map[string]string{"error": "invalid batch payload"})
		return
	}
	deliveries := make([]orchestrator.Delivery, 0, len(req.Records))
	for _, rec := range req.Records {
		deliveries = append(deliveries, orchestrator.Delivery{MessageID: rec.MessageID, Body: []byte(rec.Body)})
	}

	a.extendWriteDeadline(w, len(deliveries))
	out := a.Processor.ProcessBatch(r.Context(), deliveries)
	resp := batchResponse{BatchItemFailures: make([]itemFailure, 0, len(out.Failures))}
	for _, id := range out.Failures {
		resp.BatchItemFailures = append(resp.BatchItemFailures, itemFailure{ItemIdentifier: id})
	}
	a.json(w, http.StatusOK, resp)
}
