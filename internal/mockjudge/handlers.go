package mockjudge

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"contesthub/internal/contest"
	"contesthub/internal/model"
	pkgerrors "contesthub/pkg/errors"
	"contesthub/pkg/utils/logger"
	"contesthub/pkg/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultTimeMillis  = 15
	defaultMemoryBytes = 262144
)

type handler struct {
	store *Store
	opts  Options
}

func (h *handler) listContests(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.store.Contests())
}

func (h *handler) listProblems(c *gin.Context) {
	contestID := c.Param("contestId")
	if _, ok := h.store.Contest(contestID); !ok {
		response.Error(c, pkgerrors.New(pkgerrors.ContestNotFound).WithDetail("contestId", contestID))
		return
	}
	problems, err := h.store.Problems(contestID)
	if err != nil {
		response.Error(c, pkgerrors.Wrap(err, pkgerrors.InternalServerError))
		return
	}
	response.JSON(c, http.StatusOK, problems)
}

type submissionProblem struct {
	ContestID string `json:"contestId"`
	Index     string `json:"index"`
	Name      string `json:"name"`
}

type submissionAuthor struct {
	ContestID string   `json:"contestId"`
	Members   []string `json:"members"`
}

type submissionReply struct {
	ID                  string            `json:"id"`
	ContestID           string            `json:"contestId"`
	CreationTimeSeconds int64             `json:"creationTimeSeconds"`
	RelativeTimeSeconds int64             `json:"relativeTimeSeconds"`
	Problem             submissionProblem `json:"problem"`
	Author              submissionAuthor  `json:"author"`
	ProgrammingLanguage string            `json:"programmingLanguage"`
	Verdict             string            `json:"verdict"`
	Testset             string            `json:"testset"`
	PassedTestCount     int               `json:"passedTestCount"`
	TimeConsumedMillis  int64             `json:"timeConsumedMillis"`
	MemoryConsumedBytes int64             `json:"memoryConsumedBytes"`
	Points              float64           `json:"points"`
}

func (h *handler) submit(c *gin.Context) {
	contestID := c.Param("contestId")
	username := c.Param("username")

	var req model.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid submit body: "+err.Error())
		return
	}
	if req.Type != model.SubmissionKindCS {
		response.Error(c, pkgerrors.ValidationError("type", "unsupported submission type "+req.Type))
		return
	}

	ct, ok := h.store.Contest(contestID)
	if !ok {
		response.Error(c, pkgerrors.New(pkgerrors.ContestNotFound).WithDetail("contestId", contestID))
		return
	}
	now := h.opts.Now()
	if contest.Classify(now, ct.StartTime, ct.EndTime) != contest.StatusRunning {
		response.Error(c, pkgerrors.New(pkgerrors.ContestNotRunning).WithDetail("contestId", contestID))
		return
	}

	problems, err := h.store.Problems(contestID)
	if err != nil {
		response.Error(c, pkgerrors.Wrap(err, pkgerrors.InternalServerError))
		return
	}
	var problem *model.Problem
	for i := range problems {
		if problems[i].ID == req.PID {
			problem = &problems[i]
			break
		}
	}
	if problem == nil {
		response.Error(c, pkgerrors.Newf(pkgerrors.NotFound, "problem %s not found", req.PID).WithDetail("pid", req.PID))
		return
	}

	if h.opts.Latency > 0 {
		select {
		case <-time.After(h.opts.Latency):
		case <-c.Request.Context().Done():
			return
		}
	}

	switch h.opts.Behavior {
	case BehaviorPending:
		response.JSON(c, http.StatusOK, []submissionReply{})
		return
	case BehaviorMalformed:
		response.JSON(c, http.StatusOK, gin.H{"status": "queued"})
		return
	}

	verdict := h.opts.Verdict
	if strings.TrimSpace(req.Solution) == "" {
		verdict = "COMPILATION_ERROR"
	}
	passed := 0
	if verdict == "OK" {
		passed = len(problem.TestCases)
	}

	reply := submissionReply{
		ID:                  uuid.NewString(),
		ContestID:           contestID,
		CreationTimeSeconds: now.Unix(),
		RelativeTimeSeconds: int64(now.Sub(ct.StartTime) / time.Second),
		Problem:             submissionProblem{ContestID: contestID, Index: problem.ID, Name: problem.Title},
		Author:              submissionAuthor{ContestID: contestID, Members: []string{username}},
		ProgrammingLanguage: "GNU C++17",
		Verdict:             verdict,
		Testset:             "TESTS",
		PassedTestCount:     passed,
		TimeConsumedMillis:  defaultTimeMillis,
		MemoryConsumedBytes: defaultMemoryBytes,
	}
	if verdict == "OK" {
		reply.Points = 1
	}

	logger.Info(c.Request.Context(), "submission graded",
		zap.String("contest_id", contestID),
		zap.String("username", username),
		zap.String("pid", req.PID),
		zap.String("verdict", verdict),
	)
	response.JSON(c, http.StatusOK, []submissionReply{reply})
}

func (h *handler) addAdmin(c *gin.Context) {
	var reg model.AdminRegistration
	if err := json.NewDecoder(c.Request.Body).Decode(&reg); err != nil {
		response.BadRequest(c, "invalid registration body: "+err.Error())
		return
	}
	if strings.TrimSpace(reg.Username) == "" || reg.Password == "" {
		response.JSON(c, http.StatusOK, model.AddAdminResult{Success: false, Error: "Username and password are required"})
		return
	}
	if err := h.store.AddAdmin(reg); err != nil {
		if pkgerrors.Is(err, pkgerrors.UsernameAlreadyExists) {
			response.JSON(c, http.StatusOK, model.AddAdminResult{Success: false, Error: "Username already exists"})
			return
		}
		response.Error(c, err)
		return
	}
	logger.Info(c.Request.Context(), "admin registered", zap.String("username", reg.Username))
	response.JSON(c, http.StatusOK, model.AddAdminResult{Success: true})
}

func (h *handler) adminExists(c *gin.Context) {
	response.JSON(c, http.StatusOK, gin.H{"exists": h.store.AdminExists(c.Param("username"))})
}
