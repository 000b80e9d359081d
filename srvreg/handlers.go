package srvreg

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/safetrack/safetrack/engine"
)

var defaultHeaders = map[string]string{"Content-Type": "application/json"}

// pathSegments splits the request path, query string removed.
func pathSegments(req *Request) []string {
	path := req.Path
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	return strings.Split(strings.Trim(path, "/"), "/")
}

func queryValues(req *Request) url.Values {
	if i := strings.IndexByte(req.Path, '?'); i >= 0 {
		values, err := url.ParseQuery(req.Path[i+1:])
		if err == nil {
			return values
		}
	}
	return url.Values{}
}

// errorResponse maps engine error codes onto HTTP statuses.
func errorResponse(err error) *Response {
	var engErr *engine.Error
	if !errors.As(err, &engErr) {
		return jsonResponse(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	status := http.StatusInternalServerError
	switch engErr.Code {
	case engine.ErrCodeValidation:
		status = http.StatusUnprocessableEntity
	case engine.ErrCodeNotParticipant, engine.ErrCodeNoSignatureOnFile:
		status = http.StatusForbidden
	case engine.ErrCodeAlreadyClosed, engine.ErrCodeInvalidState:
		status = http.StatusConflict
	case engine.ErrCodeNotFound:
		status = http.StatusNotFound
	}
	return jsonResponse(status, map[string]interface{}{"error": engErr})
}

type createScheduleBody struct {
	ActorID       string `json:"actor_id"`
	AreaID        string `json:"area_id"`
	Category      string `json:"category"`
	Frequency     string `json:"frequency"`
	ScheduledDate string `json:"scheduled_date"`
	Observations  string `json:"observations"`
}

func (sr *ServiceRegistry) CreateScheduleHandler(req *Request) (*Response, error) {
	var body createScheduleBody
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
		return jsonResponse(http.StatusUnprocessableEntity, map[string]string{"error": "invalid request body: " + err.Error()}), nil
	}
	date, err := time.Parse("2006-01-02", body.ScheduledDate)
	if err != nil {
		return jsonResponse(http.StatusBadRequest, map[string]string{"error": "scheduled_date must be YYYY-MM-DD"}), nil
	}
	if body.Frequency == "" {
		body.Frequency = "None"
	}

	item, err := sr.engine.CreateScheduleItem(body.ActorID, body.AreaID, body.Category, body.Frequency, date, body.Observations)
	if err != nil {
		return errorResponse(err), nil
	}
	return jsonResponse(http.StatusCreated, item), nil
}

func (sr *ServiceRegistry) ListScheduleHandler(req *Request) (*Response, error) {
	values := queryValues(req)
	filter := engine.ScheduleFilter{
		AreaID:   values.Get("area"),
		Category: values.Get("category"),
		Status:   values.Get("status"),
	}
	if year := values.Get("year"); year != "" {
		y, err := strconv.Atoi(year)
		if err != nil {
			return jsonResponse(http.StatusBadRequest, map[string]string{"error": "year must be numeric"}), nil
		}
		filter.Year = y
	}

	items, err := sr.repository.Store().ListScheduleItems(filter)
	if err != nil {
		return errorResponse(err), nil
	}
	return jsonResponse(http.StatusOK, map[string]interface{}{"schedule": items}), nil
}

type executeScheduleBody struct {
	ActorID string `json:"actor_id"`
}

func (sr *ServiceRegistry) ExecuteScheduleHandler(req *Request) (*Response, error) {
	segments := pathSegments(req) // schedule/:id/execute
	if len(segments) != 3 {
		return jsonResponse(http.StatusBadRequest, map[string]string{"error": "invalid path"}), nil
	}
	var body executeScheduleBody
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
		return jsonResponse(http.StatusUnprocessableEntity, map[string]string{"error": "invalid request body: " + err.Error()}), nil
	}

	record, err := sr.engine.ExecuteScheduleItem(body.ActorID, segments[1])
	if err != nil {
		return errorResponse(err), nil
	}
	return jsonResponse(http.StatusCreated, record), nil
}

type createInspectionBody struct {
	ActorID        string `json:"actor_id"`
	Category       string `json:"category"`
	AreaID         string `json:"area_id"`
	InspectionDate string `json:"inspection_date"`
}

func (sr *ServiceRegistry) CreateInspectionHandler(req *Request) (*Response, error) {
	var body createInspectionBody
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
		return jsonResponse(http.StatusUnprocessableEntity, map[string]string{"error": "invalid request body: " + err.Error()}), nil
	}
	date := time.Now()
	if body.InspectionDate != "" {
		parsed, err := time.Parse("2006-01-02", body.InspectionDate)
		if err != nil {
			return jsonResponse(http.StatusBadRequest, map[string]string{"error": "inspection_date must be YYYY-MM-DD"}), nil
		}
		date = parsed
	}

	record, err := sr.engine.CreateInspection(body.ActorID, body.Category, body.AreaID, date)
	if err != nil {
		return errorResponse(err), nil
	}
	return jsonResponse(http.StatusCreated, record), nil
}

func (sr *ServiceRegistry) GetInspectionHandler(req *Request) (*Response, error) {
	segments := pathSegments(req) // inspection/:id
	if len(segments) != 2 {
		return jsonResponse(http.StatusBadRequest, map[string]string{"error": "invalid path"}), nil
	}

	record, err := sr.repository.Store().GetInspection(segments[1])
	if err != nil {
		return errorResponse(errorFromStore(err, "inspection", segments[1])), nil
	}
	followUps, err := engine.TotalFollowUpCount(sr.repository.Store(), record.ID)
	if err != nil {
		return errorResponse(err), nil
	}
	return jsonResponse(http.StatusOK, map[string]interface{}{
		"inspection":      record,
		"follow_up_count": followUps,
	}), nil
}

type checkItemBody struct {
	Label        string `json:"label"`
	ItemStatus   string `json:"item_status"`
	Observations string `json:"observations"`
}

func (sr *ServiceRegistry) AddCheckItemHandler(req *Request) (*Response, error) {
	segments := pathSegments(req) // inspection/:id/items
	if len(segments) != 3 {
		return jsonResponse(http.StatusBadRequest, map[string]string{"error": "invalid path"}), nil
	}
	var body checkItemBody
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
		return jsonResponse(http.StatusUnprocessableEntity, map[string]string{"error": "invalid request body: " + err.Error()}), nil
	}

	item, err := sr.engine.AddCheckItem(segments[1], body.Label, body.ItemStatus, body.Observations)
	if err != nil {
		return errorResponse(err), nil
	}
	return jsonResponse(http.StatusCreated, item), nil
}

func (sr *ServiceRegistry) UpdateCheckItemHandler(req *Request) (*Response, error) {
	segments := pathSegments(req) // inspection/:id/items/:itemID
	if len(segments) != 4 {
		return jsonResponse(http.StatusBadRequest, map[string]string{"error": "invalid path"}), nil
	}
	var body checkItemBody
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
		return jsonResponse(http.StatusUnprocessableEntity, map[string]string{"error": "invalid request body: " + err.Error()}), nil
	}

	if err := sr.engine.UpdateCheckItem(segments[1], segments[3], body.ItemStatus, body.Observations); err != nil {
		return errorResponse(err), nil
	}
	return jsonResponse(http.StatusOK, map[string]string{"status": "updated"}), nil
}

type generalStatusBody struct {
	GeneralStatus string `json:"general_status"`
}

func (sr *ServiceRegistry) GeneralStatusHandler(req *Request) (*Response, error) {
	segments := pathSegments(req) // inspection/:id/general-status
	if len(segments) != 3 {
		return jsonResponse(http.StatusBadRequest, map[string]string{"error": "invalid path"}), nil
	}
	var body generalStatusBody
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
		return jsonResponse(http.StatusUnprocessableEntity, map[string]string{"error": "invalid request body: " + err.Error()}), nil
	}

	if err := sr.engine.SetGeneralStatus(segments[1], body.GeneralStatus); err != nil {
		return errorResponse(err), nil
	}
	return jsonResponse(http.StatusOK, map[string]string{"status": "updated"}), nil
}

type signBody struct {
	UserID string `json:"user_id"`
}

func (sr *ServiceRegistry) SignHandler(req *Request) (*Response, error) {
	segments := pathSegments(req) // inspection/:id/sign
	if len(segments) != 3 {
		return jsonResponse(http.StatusBadRequest, map[string]string{"error": "invalid path"}), nil
	}
	var body signBody
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
		return jsonResponse(http.StatusUnprocessableEntity, map[string]string{"error": "invalid request body: " + err.Error()}), nil
	}
	if body.UserID == "" {
		return jsonResponse(http.StatusBadRequest, map[string]string{"error": "user_id is required"}), nil
	}

	result, err := sr.engine.Sign(body.UserID, segments[1])
	if err != nil {
		return errorResponse(err), nil
	}
	return jsonResponse(http.StatusOK, result), nil
}

func (sr *ServiceRegistry) MatrixHandler(req *Request) (*Response, error) {
	values := queryValues(req)
	filter := engine.MatrixFilter{AreaID: values.Get("area")}
	if year := values.Get("year"); year != "" {
		y, err := strconv.Atoi(year)
		if err != nil {
			return jsonResponse(http.StatusBadRequest, map[string]string{"error": "year must be numeric"}), nil
		}
		filter.Year = y
	} else {
		filter.Year = time.Now().Year()
	}

	matrix, err := engine.BuildComplianceMatrix(sr.repository.Store(), filter)
	if err != nil {
		return errorResponse(err), nil
	}
	return jsonResponse(http.StatusOK, matrix), nil
}

func (sr *ServiceRegistry) NotificationsHandler(req *Request) (*Response, error) {
	segments := pathSegments(req) // notifications/:userID
	if len(segments) != 2 {
		return jsonResponse(http.StatusBadRequest, map[string]string{"error": "invalid path"}), nil
	}

	notifications, err := sr.repository.UnreadNotifications(segments[1])
	if err != nil {
		return errorResponse(err), nil
	}
	return jsonResponse(http.StatusOK, map[string]interface{}{"notifications": notifications}), nil
}

// errorFromStore upgrades a raw store error into an engine error so the
// HTTP mapping is uniform.
func errorFromStore(err error, entity, id string) error {
	var engErr *engine.Error
	if errors.As(err, &engErr) {
		return engErr
	}
	return &engine.Error{
		Code:    engine.ErrCodeNotFound,
		Message: entity + " does not exist",
		Detail:  entity + " " + id + ": " + err.Error(),
	}
}
