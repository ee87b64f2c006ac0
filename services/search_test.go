package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"MedShare/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drugServer(t *testing.T, status int, body string) (*httptest.Server, *string) {
	t.Helper()
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.URL.Query().Get("search") + "|" + r.URL.Query().Get("limit")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &seen
}

func TestDrugSearchPassesPayloadThrough(t *testing.T) {
	srv, seen := drugServer(t, http.StatusOK, `{"results":[{"openfda":{"brand_name":["TYLENOL"]}}]}`)
	svc := NewDrugSearchService(srv.URL, time.Second)

	payload, err := svc.Search(context.Background(), " tylenol ")
	require.NoError(t, err)
	assert.JSONEq(t, `{"results":[{"openfda":{"brand_name":["TYLENOL"]}}]}`, string(payload))
	assert.Equal(t, `openfda.brand_name:"tylenol"|10`, *seen)
}

func TestDrugSearchNoMatch(t *testing.T) {
	srv, _ := drugServer(t, http.StatusNotFound, `{"error":{"code":"NOT_FOUND","message":"No matches found!"}}`)
	svc := NewDrugSearchService(srv.URL, time.Second)

	payload, err := svc.Search(context.Background(), "zzz")
	require.NoError(t, err)
	assert.Contains(t, string(payload), "NOT_FOUND")
}

func TestDrugSearchFailures(t *testing.T) {
	svc := NewDrugSearchService("http://unused.invalid", time.Second)
	_, err := svc.Search(context.Background(), "   ")
	requireKind(t, apperr.KindValidation, err)

	srv, _ := drugServer(t, http.StatusInternalServerError, `oops`)
	_, err = NewDrugSearchService(srv.URL, time.Second).Search(context.Background(), "aspirin")
	requireKind(t, apperr.KindUpstream, err)

	garbled, _ := drugServer(t, http.StatusOK, `<html>`)
	_, err = NewDrugSearchService(garbled.URL, time.Second).Search(context.Background(), "aspirin")
	requireKind(t, apperr.KindUpstream, err)
}
