package transit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"traveltime-tiles/internal/domain"
)

const SourceOTP = "otp"

const otpPlanQuery = `query BestDuration($arriveBy: Boolean, $date: String, $time: String, $from_lat: Float!, $from_lon: Float!, $to_lat: Float!, $to_lon: Float!) {
  plan(
    from: {lat: $from_lat, lon: $from_lon},
    to: {lat: $to_lat, lon: $to_lon},
    date: $date,
    time: $time,
    arriveBy: $arriveBy,
    searchWindow: 3600,
    numItineraries: 10
  ) {
    itineraries {
      duration
    }
  }
}`

type OTPConfig struct {
	GraphQLURL string
	Timeout    time.Duration
}

// OTPClient queries an OpenTripPlanner instance through its GraphQL API.
type OTPClient struct {
	http httpClient
	url  string
}

func NewOTPClient(cfg OTPConfig) *OTPClient {
	return &OTPClient{
		http: newHTTPClient(cfg.Timeout),
		url:  cfg.GraphQLURL,
	}
}

func (c *OTPClient) Source() string { return SourceOTP }

type graphQLRequest struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type otpPlanResponse struct {
	Data struct {
		Plan *struct {
			Itineraries []struct {
				Duration *float64 `json:"duration"`
			} `json:"itineraries"`
		} `json:"plan"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

func (c *OTPClient) QueryBestDuration(
	ctx context.Context,
	origin domain.GeoCoordinate,
	destination domain.GeoCoordinate,
	when domain.TravelTime,
) (*domain.DurationResult, error) {
	if err := when.Validate(); err != nil {
		return nil, err
	}

	vars := map[string]any{
		"from_lat": origin.Lat,
		"from_lon": origin.Lng,
		"to_lat":   destination.Lat,
		"to_lon":   destination.Lng,
	}
	if t, arrival, ok := when.Moment(); ok {
		vars["date"] = t.Format(time.DateOnly)
		vars["time"] = t.Format(time.TimeOnly)
		vars["arriveBy"] = arrival
	}

	body, err := json.Marshal(graphQLRequest{
		Query:         otpPlanQuery,
		Variables:     vars,
		OperationName: "BestDuration",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal otp request: %w", err)
	}

	var resp otpPlanResponse
	err = c.http.doJSON(ctx, func() (*http.Request, error) {
		return c.http.newRequest(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("otp plan request: %w", err)
	}
	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, e.Message)
		}
		return nil, errors.New("otp graphql: " + strings.Join(msgs, "; "))
	}
	if resp.Data.Plan == nil {
		return nil, nil
	}

	var (
		best  float64
		found bool
	)
	for _, it := range resp.Data.Plan.Itineraries {
		if it.Duration == nil {
			continue
		}
		if !found || *it.Duration < best {
			best = *it.Duration
			found = true
		}
	}
	if !found {
		return nil, nil
	}
	return domain.NewDurationResult(time.Duration(best*float64(time.Second)), SourceOTP), nil
}
