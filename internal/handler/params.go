package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"worklog/internal/model"
)

const (
	MsgNoToken          = "No token, authorization denied"
	MsgInvalidToken     = "Token is not valid"
	MsgInvalidBody      = "Invalid request body"
	MsgTooManyRequests  = "Too many requests, please try again later"
	MsgPermissionDenied = "Access denied"
)

// pathID parses a positive integer path parameter, answering 400 otherwise.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		Fail(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s", name))
		return 0, false
	}
	return id, true
}

// queryID reads an optional integer query parameter; empty means absent.
func queryID(c *gin.Context, name string) (*int64, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("Invalid %s", name)
	}
	return &id, nil
}

// queryDate reads an optional YYYY-MM-DD query parameter.
func queryDate(c *gin.Context, name string) (*model.Date, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("Invalid %s, expected YYYY-MM-DD", name)
	}
	return &d, nil
}

// workLogFilter binds the listing filters present in the query string.
func workLogFilter(c *gin.Context, names ...string) (model.WorkLogFilter, error) {
	var f model.WorkLogFilter
	var err error
	for _, name := range names {
		switch name {
		case "project_id":
			f.ProjectID, err = queryID(c, name)
		case "phase_id":
			f.PhaseID, err = queryID(c, name)
		case "user_id":
			f.UserID, err = queryID(c, name)
		case "start_date":
			f.StartDate, err = queryDate(c, name)
		case "end_date":
			f.EndDate, err = queryDate(c, name)
		}
		if err != nil {
			return f, err
		}
	}
	return f, nil
}
