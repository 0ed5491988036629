package api

import (
	"context"
	"encoding/json"
	"fmt"

	"slippi-ranks/internal/config"
	"slippi-ranks/internal/constants"

	"github.com/valyala/fasthttp"
)

// userProfileQuery is the gateway's account page query. It is sent verbatim.
const userProfileQuery = "fragment userProfilePage on User {\n  fbUid\n  displayName\n  connectCode {\n    code\n    __typename\n  }\n  status\n  activeSubscription {\n    level\n    hasGiftSub\n    __typename\n  }\n  rankedNetplayProfile {\n    id\n    ratingOrdinal\n    ratingUpdateCount\n    wins\n    losses\n    dailyGlobalPlacement\n    dailyRegionalPlacement\n    continent\n    characters {\n      id\n      character\n      gameCount\n      __typename\n    }\n    __typename\n  }\n  __typename\n}\n\nquery AccountManagementPageQuery($cc: String!, $uid: String!) {\n  getUser(fbUid: $uid) {\n    ...userProfilePage\n    __typename\n  }\n  getConnectCode(code: $cc) {\n    user {\n      ...userProfilePage\n      __typename\n    }\n    __typename\n  }\n}\n"

type SlippiClient struct {
	url    string
	client *fasthttp.Client
}

func NewSlippiClient(cfg *config.Config) *SlippiClient {
	return &SlippiClient{
		url: cfg.SlippiAPIURL,
		client: &fasthttp.Client{
			MaxConnsPerHost:     constants.HTTPMaxConnsPerHost,
			ReadTimeout:         cfg.ExternalAPITimeout,
			WriteTimeout:        cfg.ExternalAPITimeout,
			MaxIdleConnDuration: constants.HTTPMaxIdleConnDuration,
		},
	}
}

type GraphQLRequest struct {
	OperationName string            `json:"operationName"`
	Variables     map[string]string `json:"variables"`
	Query         string            `json:"query"`
}

// NewProfileQuery builds the request envelope; both variables carry the same code.
func NewProfileQuery(code string) GraphQLRequest {
	return GraphQLRequest{
		OperationName: constants.SlippiOperationName,
		Variables:     map[string]string{"cc": code, "uid": code},
		Query:         userProfileQuery,
	}
}

// GetConnectCode runs the profile query for code. A transport or decode failure is
// returned as a *LookupError; interpreting the payload is left to the caller.
// GraphQL errors only fail the lookup when getConnectCode itself is missing.
func (c *SlippiClient) GetConnectCode(ctx context.Context, code string) (*ConnectCodeResponse, error) {
	resp, err := doRequest[ConnectCodeResponse](ctx, c, NewProfileQuery(code))
	if err != nil {
		return nil, NewLookupError(code, err)
	}
	if len(resp.Errors) > 0 && resp.Data.GetConnectCode == nil {
		return nil, NewLookupError(code, fmt.Errorf("%w: %s", ErrMalformedResponse, resp.Errors[0].Message))
	}
	return resp, nil
}

func doRequest[T any](ctx context.Context, client *SlippiClient, payload any) (*T, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(client.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("%w: API error: %d", ErrNetwork, resp.StatusCode())
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return &result, nil
}

type ConnectCodeResponse struct {
	Data struct {
		GetConnectCode *ConnectCodeLookup `json:"getConnectCode"`
	} `json:"data"`
	Errors []GraphQLError `json:"errors"`
}

type GraphQLError struct {
	Message string `json:"message"`
}

type ConnectCodeLookup struct {
	User *SlippiUser `json:"user"`
}

type SlippiUser struct {
	DisplayName *string `json:"displayName"`
	ConnectCode *struct {
		Code string `json:"code"`
	} `json:"connectCode"`
	RankedNetplayProfile *RankedNetplayProfile `json:"rankedNetplayProfile"`
}

type RankedNetplayProfile struct {
	RatingOrdinal          *float64         `json:"ratingOrdinal"`
	RatingUpdateCount      *int             `json:"ratingUpdateCount"`
	Wins                   *int             `json:"wins"`
	Losses                 *int             `json:"losses"`
	DailyGlobalPlacement   *int             `json:"dailyGlobalPlacement"`
	DailyRegionalPlacement *int             `json:"dailyRegionalPlacement"`
	Continent              *string          `json:"continent"`
	Characters             []CharacterUsage `json:"characters"`
}

type CharacterUsage struct {
	Character string `json:"character"`
	GameCount int    `json:"gameCount"`
}
