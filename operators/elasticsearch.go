package operators

import (
	"bytes"
	"context"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/rs/zerolog/log"

	"github.com/tarungka/flowplan/plan"
)

// ElasticsearchConfig holds the connection details for ElasticsearchOutputOperator.
type ElasticsearchConfig struct {
	Addresses []string
	APIKey    string
	Index     string
}

// ElasticsearchOutputOperator indexes every document it receives into a
// single Elasticsearch index. DocsIndexed is an autoMetric-tagged counter
// inferred as a long-sum aggregator (§4.H scenario S6 grounding).
type ElasticsearchOutputOperator struct {
	In plan.InputPort

	Config ElasticsearchConfig

	DocsIndexed int64 `autoMetric:"true"`

	client *elasticsearch.Client
}

func (e *ElasticsearchOutputOperator) Setup(ctx context.Context) error {
	if e.Config.Index == "" {
		return fmt.Errorf("operators: elasticsearch config missing index")
	}
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: e.Config.Addresses,
		APIKey:    e.Config.APIKey,
	})
	if err != nil {
		log.Err(err).Msg("failed to create elasticsearch client")
		return err
	}
	e.client = client
	return nil
}

// Index writes doc into the configured index and increments DocsIndexed on
// success, the counter the metric aggregator reports on.
func (e *ElasticsearchOutputOperator) Index(ctx context.Context, doc []byte) error {
	res, err := e.client.Index(e.Config.Index, bytes.NewReader(doc))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("operators: elasticsearch index error: %s", res.Status())
	}
	e.DocsIndexed++
	return nil
}

func (e *ElasticsearchOutputOperator) Teardown() error { return nil }
