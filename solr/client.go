// Package solr implements ossearch.Index as a thin client over the Solr
// JSON HTTP API. Each collection is served by a static list of node URLs
// and a client built for worker i talks to node i mod len(nodes).
package solr

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ossearch/ossearch"
)

// DefaultTimeout is the default timeout for index requests.
const DefaultTimeout = 30 * time.Second

// Ensure Client implements ossearch.Index at compile time.
var _ ossearch.Index = (*Client)(nil)

// Client talks to one node per collection over HTTP.
type Client struct {
	nodes    map[ossearch.Collection][]string
	workerID int
	timeout  time.Duration
	client   *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithWorkerID selects which node of each collection's list the client
// talks to. Defaults to 0.
func WithWorkerID(id int) Option {
	return func(c *Client) {
		c.workerID = id
	}
}

// WithTimeout sets the timeout for index requests.
// Defaults to DefaultTimeout (30s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// NewClient creates a Client over the given per-collection node URLs.
// Each URL points at one collection core, e.g. "http://host:8983/solr/working".
func NewClient(workingNodes, mainNodes []string, opts ...Option) (*Client, error) {
	if len(workingNodes) == 0 || len(mainNodes) == 0 {
		return nil, ossearch.Errorf(ossearch.EINVALID, "at least one node URL is required per collection")
	}

	c := &Client{
		nodes: map[ossearch.Collection][]string{
			ossearch.Working: workingNodes,
			ossearch.Main:    mainNodes,
		},
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.client = &http.Client{
		Timeout: c.timeout,
	}

	return c, nil
}

// base returns the node URL this client uses for a collection.
func (c *Client) base(coll ossearch.Collection) (string, error) {
	nodes, ok := c.nodes[coll]
	if !ok {
		return "", ossearch.Errorf(ossearch.EINVALID, "unknown collection %q", coll)
	}
	return strings.TrimRight(nodes[c.workerID%len(nodes)], "/"), nil
}

// Add inserts documents into a collection.
func (c *Client) Add(ctx context.Context, coll ossearch.Collection, docs []*ossearch.Document, opts ossearch.AddOptions) error {
	if len(docs) == 0 {
		return nil
	}

	var body []byte
	var err error
	if len(opts.Boosts) == 0 {
		body, err = json.Marshal(docs)
	} else {
		body, err = boostedUpdate(docs, opts.Boosts)
	}
	if err != nil {
		return err
	}

	params := url.Values{}
	params.Set("overwrite", strconv.FormatBool(opts.Overwrite))
	params.Set("commit", strconv.FormatBool(opts.Commit))
	return c.update(ctx, coll, params, body)
}

// boostedUpdate builds a Solr JSON update body applying index-time field
// boosts. Solr's JSON update handler accepts repeated "add" keys, one per
// document, with boosted fields wrapped as {"boost": b, "value": v}.
func boostedUpdate(docs []*ossearch.Document, boosts ossearch.Boosts) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, doc := range docs {
		raw, err := json.Marshal(doc)
		if err != nil {
			return nil, err
		}
		fields := make(map[string]json.RawMessage)
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, err
		}
		for name, boost := range boosts {
			value, ok := fields[name]
			if !ok {
				continue
			}
			wrapped, err := json.Marshal(map[string]any{
				"boost": boost,
				"value": value,
			})
			if err != nil {
				return nil, err
			}
			fields[name] = wrapped
		}
		wrapped, err := json.Marshal(fields)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(`"add":{"doc":`)
		buf.Write(wrapped)
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Delete removes the document with the given id. Deleting an id that does
// not exist is not an error.
func (c *Client) Delete(ctx context.Context, coll ossearch.Collection, id string, opts ossearch.DeleteOptions) error {
	body, err := json.Marshal(map[string]any{
		"delete": map[string]string{"id": id},
	})
	if err != nil {
		return err
	}

	params := url.Values{}
	params.Set("commit", strconv.FormatBool(opts.Commit))
	return c.update(ctx, coll, params, body)
}

// Commit makes pending changes visible.
func (c *Client) Commit(ctx context.Context, coll ossearch.Collection) error {
	params := url.Values{}
	params.Set("commit", "true")
	return c.update(ctx, coll, params, []byte("{}"))
}

// Optimize compacts the collection's segments.
func (c *Client) Optimize(ctx context.Context, coll ossearch.Collection) error {
	params := url.Values{}
	params.Set("optimize", "true")
	return c.update(ctx, coll, params, []byte("{}"))
}

// Search returns one page of matching documents.
func (c *Client) Search(ctx context.Context, coll ossearch.Collection, q ossearch.Query) ([]*ossearch.Document, error) {
	base, err := c.base(coll)
	if err != nil {
		return nil, err
	}

	if q.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.Timeout)
		defer cancel()
	}

	params := url.Values{}
	params.Set("q", q.Q)
	if q.Filter != "" {
		params.Set("fq", q.Filter)
	}
	params.Set("rows", strconv.Itoa(q.Rows))
	params.Set("start", strconv.Itoa(q.Start))
	params.Set("wt", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/select?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, ossearch.Errorf(ossearch.EUNAVAILABLE, "index node unavailable: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var out struct {
		Response struct {
			Docs []*ossearch.Document `json:"docs"`
		} `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, ossearch.Errorf(ossearch.EINTERNAL, "decoding search response: %v", err)
	}

	return out.Response.Docs, nil
}

// update posts a JSON update command to the collection's update handler.
func (c *Client) update(ctx context.Context, coll ossearch.Collection, params url.Values, body []byte) error {
	base, err := c.base(coll)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/update?"+params.Encode(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return ossearch.Errorf(ossearch.EUNAVAILABLE, "index node unavailable: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}

	io.Copy(io.Discard, resp.Body)
	return nil
}

func statusError(resp *http.Response) error {
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return ossearch.Errorf(ossearch.EINTERNAL, "index returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
}
