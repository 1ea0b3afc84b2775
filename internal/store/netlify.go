// Package store persists contribution snapshots to a Netlify-style site
// metadata API.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/contriborg/contribsync/internal/domain"
)

// Netlify writes snapshots to the site metadata resource with a single
// overwrite-style PUT. It never reads back.
type Netlify struct {
	httpClient *http.Client
	baseURL    string
	siteID     string
	logger     *logrus.Logger
}

// NewNetlify creates a store client authenticated with the given API token.
func NewNetlify(baseURL, siteID, token string, logger *logrus.Logger) *Netlify {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &Netlify{
		httpClient: oauth2.NewClient(context.Background(), ts),
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		siteID:     siteID,
		logger:     logger,
	}
}

// Put overwrites the site metadata with the given snapshot.
func (n *Netlify) Put(ctx context.Context, snapshot domain.Snapshot) error {
	body, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/sites/%s/metadata", n.baseURL, n.siteID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build metadata request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("put metadata: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &domain.PersistenceError{StatusCode: resp.StatusCode}
	}
	n.logger.WithFields(logrus.Fields{
		"site": n.siteID,
		"days": len(snapshot.Contributions),
	}).Debug("snapshot persisted")
	return nil
}
