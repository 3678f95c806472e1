package costexplorer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer/types"
	"github.com/de-tools/traffic-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
)

// SourceName identifies this source in metrics and snapshots.
const SourceName = "costexplorer"

// Client is the part of the Cost Explorer API the source calls.
type Client interface {
	GetCostAndUsage(
		ctx context.Context,
		params *costexplorer.GetCostAndUsageInput,
		optFns ...func(*costexplorer.Options),
	) (*costexplorer.GetCostAndUsageOutput, error)
}

// Source reports AWS spend. Query dimensions become GROUP BY dimensions and
// query metrics are Cost Explorer metric names such as UnblendedCost.
type Source struct {
	client Client
}

func New(client Client) *Source {
	return &Source{client: client}
}

func NewFromProfile(ctx context.Context, profile, region string) (*Source, error) {
	cfg, err := LoadConfig(ctx, profile, region)
	if err != nil {
		return nil, err
	}
	return New(costexplorer.NewFromConfig(cfg)), nil
}

func (s *Source) Name() string {
	return SourceName
}

// RunReport sums each group's amounts across the monthly buckets the range
// spans. Groups keep the order Cost Explorer first returns them in.
func (s *Source) RunReport(ctx context.Context, q domain.RangeQuery) ([]domain.RawRow, error) {
	input := &costexplorer.GetCostAndUsageInput{
		TimePeriod: &types.DateInterval{
			Start: aws.String(q.StartDate()),
			// The end date is exclusive.
			End: aws.String(q.End.AddDate(0, 0, 1).Format("2006-01-02")),
		},
		Granularity: types.GranularityMonthly,
		Metrics:     q.Metrics,
	}
	for _, dim := range q.Dimensions {
		input.GroupBy = append(input.GroupBy, types.GroupDefinition{
			Type: types.GroupDefinitionTypeDimension,
			Key:  aws.String(dim),
		})
	}
	if q.Filter != nil {
		input.Filter = &types.Expression{
			Dimensions: &types.DimensionValues{
				Key:    types.Dimension(q.Filter.Field),
				Values: []string{q.Filter.Value},
			},
		}
	}

	acc := newAccumulator(len(q.Metrics))
	for {
		out, err := s.client.GetCostAndUsage(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to get cost and usage: %w", err)
		}

		for _, bucket := range out.ResultsByTime {
			if len(q.Dimensions) == 0 {
				if err := acc.add(nil, bucket.Total, q.Metrics); err != nil {
					return nil, err
				}
				continue
			}
			for _, group := range bucket.Groups {
				if err := acc.add(group.Keys, group.Metrics, q.Metrics); err != nil {
					return nil, err
				}
			}
		}

		if out.NextPageToken == nil || *out.NextPageToken == "" {
			break
		}
		input.NextPageToken = out.NextPageToken
	}

	rows := acc.rows()
	if q.Limit > 0 && int64(len(rows)) > q.Limit {
		rows = rows[:q.Limit]
	}

	zerolog.Ctx(ctx).Debug().
		Str("start", q.StartDate()).
		Str("end", q.EndDate()).
		Int("groups", len(rows)).
		Msg("cost explorer report")
	return rows, nil
}

type accumulator struct {
	metrics int
	index   map[string]int
	keys    [][]string
	sums    [][]float64
}

func newAccumulator(metrics int) *accumulator {
	return &accumulator{metrics: metrics, index: make(map[string]int)}
}

func (a *accumulator) add(keys []string, values map[string]types.MetricValue, metrics []string) error {
	id := strings.Join(keys, "\x00")
	i, ok := a.index[id]
	if !ok {
		i = len(a.keys)
		a.index[id] = i
		a.keys = append(a.keys, keys)
		a.sums = append(a.sums, make([]float64, a.metrics))
	}

	for m, name := range metrics {
		v, ok := values[name]
		if !ok || v.Amount == nil {
			continue
		}
		amount, err := strconv.ParseFloat(*v.Amount, 64)
		if err != nil {
			return fmt.Errorf("failed to parse %s amount %q: %w", name, *v.Amount, err)
		}
		a.sums[i][m] += amount
	}
	return nil
}

func (a *accumulator) rows() []domain.RawRow {
	rows := make([]domain.RawRow, 0, len(a.keys))
	for i, keys := range a.keys {
		values := make([]string, 0, len(a.sums[i]))
		for _, sum := range a.sums[i] {
			values = append(values, strconv.FormatFloat(sum, 'f', -1, 64))
		}
		rows = append(rows, domain.RawRow{DimensionValues: append([]string{}, keys...), MetricValues: values})
	}
	return rows
}
