package eduapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"edu-info-bot/internal/config"
	"edu-info-bot/internal/constants"
	apperrors "edu-info-bot/internal/errors"
	"edu-info-bot/internal/models"
)

// Client represents an education backend API client. It is stateless aside
// from fixed configuration and safe for concurrent use.
type Client struct {
	httpClient *resty.Client
	logger     *logrus.Logger
}

// UpdateResult is the outcome of a partial user update
type UpdateResult int

const (
	// UpdateActivated means the target account was updated
	UpdateActivated UpdateResult = iota
	// UpdateNotFound means no account exists with the target id
	UpdateNotFound
)

// NewClient creates a new education backend API client
func NewClient(cfg config.BackendConfig, logger *logrus.Logger) *Client {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Authorization", cfg.Token).
		SetTimeout(constants.DefaultTimeout * time.Second).
		SetRetryCount(constants.DefaultRetryCount).
		SetRetryWaitTime(constants.DefaultRetryWaitTime * time.Second).
		SetRetryMaxWaitTime(constants.DefaultRetryMaxWaitTime * time.Second)

	return &Client{
		httpClient: httpClient,
		logger:     logger,
	}
}

// FetchUser gets a user record by platform id. A 404 yields a record with
// IsExist=false and nothing else.
func (c *Client) FetchUser(ctx context.Context, userID int64) (*models.User, error) {
	c.logger.Debugf("Fetching user %d", userID)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(fmt.Sprintf("users/%d/", userID))

	if err != nil {
		return nil, fmt.Errorf("fetch user request failed: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusNotFound:
		return &models.User{UserID: userID, IsExist: false}, nil
	case http.StatusOK:
		var user models.User
		if err := json.Unmarshal(resp.Body(), &user); err != nil {
			return nil, fmt.Errorf("failed to parse user response: %w", err)
		}
		user.UserID = userID
		user.IsExist = true
		return &user, nil
	default:
		c.logger.Errorf("Fetch user failed - Status: %d, Response: %s", resp.StatusCode(), string(resp.Body()))
		return nil, &apperrors.UnexpectedStatusError{Operation: "fetch user", Status: resp.StatusCode()}
	}
}

// CreateUser registers a new user with form-encoded fields
func (c *Client) CreateUser(ctx context.Context, reg models.Registration) error {
	c.logger.Debugf("Creating user %d", reg.UserID)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetFormData(reg.FormData()).
		Post("users/")

	if err != nil {
		return fmt.Errorf("create user request failed: %w", err)
	}

	if resp.StatusCode() != http.StatusCreated {
		c.logger.Errorf("Create user failed - Status: %d, Response: %s", resp.StatusCode(), string(resp.Body()))
		return &apperrors.UnexpectedStatusError{Operation: "create user", Status: resp.StatusCode()}
	}

	return nil
}

// UpdateUser activates the target account by setting its department. The
// target id goes into the path only, never into the body.
func (c *Client) UpdateUser(ctx context.Context, targetID string, department int) (UpdateResult, error) {
	c.logger.Debugf("Updating user %s: department=%d", targetID, department)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"department": strconv.Itoa(department),
			"is_active":  "true",
		}).
		Patch(fmt.Sprintf("users/%s/", targetID))

	if err != nil {
		return 0, fmt.Errorf("update user request failed: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		return UpdateActivated, nil
	case http.StatusNotFound:
		return UpdateNotFound, nil
	default:
		c.logger.Errorf("Update user failed - Status: %d, Response: %s", resp.StatusCode(), string(resp.Body()))
		return 0, &apperrors.UnexpectedStatusError{Operation: "update user", Status: resp.StatusCode()}
	}
}

// ListEducationTypes gets the education types as a name->id mapping
func (c *Client) ListEducationTypes(ctx context.Context) (models.Options, error) {
	return c.listOptions(ctx, "list education types", "type/")
}

// ListFaculties gets the faculties of an education type as a name->id mapping
func (c *Client) ListFaculties(ctx context.Context, typeID int) (models.Options, error) {
	return c.listOptions(ctx, "list faculties", fmt.Sprintf("faculties/%d/", typeID))
}

// ListProfiles gets the profiles of a faculty as a name->id mapping
func (c *Client) ListProfiles(ctx context.Context, typeID, facultyID int) (models.Options, error) {
	return c.listOptions(ctx, "list profiles", fmt.Sprintf("profiles/%d/%d/", typeID, facultyID))
}

// GetDescription gets the description text of a profile. The backend carries
// the text as the name field of a single-element list response.
func (c *Client) GetDescription(ctx context.Context, typeID, facultyID, profileID int) (string, error) {
	const op = "get description"

	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(fmt.Sprintf("descriptions/%d/%d/%d/", typeID, facultyID, profileID))

	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", op, err)
	}

	if resp.StatusCode() != http.StatusOK {
		c.logger.Errorf("Get description failed - Status: %d, Response: %s", resp.StatusCode(), string(resp.Body()))
		return "", &apperrors.UnexpectedStatusError{Operation: op, Status: resp.StatusCode()}
	}

	records, err := decodeRecords(op, resp.Body())
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", &apperrors.DataContractError{Operation: op, Reason: "empty description response"}
	}

	return *records[0].Name, nil
}

// listOptions performs a GET against a list endpoint and normalizes the body
func (c *Client) listOptions(ctx context.Context, op, path string) (models.Options, error) {
	c.logger.Debugf("Requesting %s: %s", op, path)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		Get(path)

	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", op, err)
	}

	if resp.StatusCode() != http.StatusOK {
		c.logger.Errorf("%s failed - Status: %d, Response: %s", op, resp.StatusCode(), string(resp.Body()))
		return nil, &apperrors.UnexpectedStatusError{Operation: op, Status: resp.StatusCode()}
	}

	return prepareData(op, resp.Body())
}

// record is one element of a backend list response
type record struct {
	ID   *int    `json:"id"`
	Name *string `json:"name"`
}

// decodeRecords validates that the body is a list of records each carrying
// non-null id and name fields, preserving response order
func decodeRecords(op string, body []byte) ([]record, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &apperrors.DataContractError{Operation: op, Reason: "response is not a list"}
	}

	records := make([]record, 0, len(raw))
	for _, item := range raw {
		var rec record
		if err := json.Unmarshal(item, &rec); err != nil {
			return nil, &apperrors.DataContractError{Operation: op, Reason: "list element is not a record"}
		}
		if rec.ID == nil {
			return nil, &apperrors.DataContractError{Operation: op, Reason: "record has no id"}
		}
		if rec.Name == nil {
			return nil, &apperrors.DataContractError{Operation: op, Reason: "record has no name"}
		}
		records = append(records, rec)
	}

	return records, nil
}

// prepareData normalizes a list response into a name->id mapping. A
// duplicated name keeps the id of the later record.
func prepareData(op string, body []byte) (models.Options, error) {
	records, err := decodeRecords(op, body)
	if err != nil {
		return nil, err
	}

	options := make(models.Options, len(records))
	for _, rec := range records {
		options[*rec.Name] = *rec.ID
	}

	return options, nil
}
