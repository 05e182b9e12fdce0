package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
)

// HTTPTriggerRequest is the payload the Functions host sends for an HTTP
// trigger when request forwarding is disabled.
type HTTPTriggerRequest struct {
	Data struct {
		Req struct {
			URL             string              `json:"Url"`
			Method          string              `json:"Method"`
			Query           map[string]string   `json:"Query"`
			Headers         map[string][]string `json:"Headers"`
			Params          map[string]string   `json:"Params"`
			Body            string              `json:"Body"`
			IsBase64Encoded bool                `json:"isBase64Encoded"`
		} `json:"req"`
	} `json:"Data"`
	Metadata map[string]any `json:"Metadata"`
}

// HTTPTriggerResponse is the reply the host expects for an HTTP trigger.
type HTTPTriggerResponse struct {
	Outputs struct {
		Res struct {
			StatusCode int               `json:"statusCode"`
			Headers    map[string]string `json:"headers"`
			Body       string            `json:"body"`
		} `json:"res"`
	} `json:"Outputs"`
	Logs        []string `json:"Logs,omitempty"`
	ReturnValue any      `json:"ReturnValue,omitempty"`
}

// HandleHTTPTrigger unwraps a host invocation into a plain request, serves it
// with next and wraps the recorded response. Cookies survive the round trip
// so sessions work through the adapter.
func (d *Dependencies) HandleHTTPTrigger(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var invokeReq HTTPTriggerRequest
		if err := json.NewDecoder(r.Body).Decode(&invokeReq); err != nil {
			slog.Error("failed to unmarshal HTTP trigger request", "error", err)
			http.Error(w, "Failed to unmarshal request", http.StatusBadRequest)
			return
		}

		reqData := invokeReq.Data.Req
		body := []byte(reqData.Body)
		// Some hosts send base64 without setting the flag.
		if decoded, err := base64.StdEncoding.DecodeString(reqData.Body); err == nil && (reqData.IsBase64Encoded || json.Valid(decoded)) {
			body = decoded
		}

		var bodyReader io.Reader = http.NoBody
		if len(body) > 0 {
			bodyReader = bytes.NewReader(body)
		}

		inner, err := http.NewRequestWithContext(r.Context(), reqData.Method, reqData.URL, bodyReader)
		if err != nil {
			slog.Error("failed to create internal request", "url", reqData.URL, "error", err)
			http.Error(w, "Failed to create internal request", http.StatusInternalServerError)
			return
		}
		for k, values := range reqData.Headers {
			for _, v := range values {
				inner.Header.Add(k, v)
			}
		}
		slog.Info("serving wrapped HTTP request", "method", inner.Method, "path", inner.URL.Path)

		recorder := httptest.NewRecorder()
		next.ServeHTTP(recorder, inner)

		res := recorder.Result()
		resBody, _ := io.ReadAll(res.Body)
		res.Body.Close()

		headers := make(map[string]string, len(res.Header))
		for k, v := range res.Header {
			headers[k] = strings.Join(v, ", ")
		}

		var out HTTPTriggerResponse
		out.Outputs.Res.StatusCode = res.StatusCode
		out.Outputs.Res.Headers = headers
		out.Outputs.Res.Body = string(resBody)
		WriteJSON(w, http.StatusOK, out)
	}
}
