package mockjudge

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Behavior selects how the submit endpoint answers.
type Behavior string

const (
	// BehaviorResolve answers with a one-element verdict array.
	BehaviorResolve Behavior = "resolve"
	// BehaviorPending answers with an empty array.
	BehaviorPending Behavior = "pending"
	// BehaviorMalformed answers with an object instead of an array.
	BehaviorMalformed Behavior = "malformed"
)

// Options tune the stand-in.
type Options struct {
	Now      func() time.Time
	Verdict  string
	Behavior Behavior
	Latency  time.Duration
	CORS     CORSConfig
}

func (o Options) withDefaults() Options {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Verdict == "" {
		o.Verdict = "OK"
	}
	if o.Behavior == "" {
		o.Behavior = BehaviorResolve
	}
	return o
}

// NewRouter builds the HTTP handler serving the contest API.
func NewRouter(store *Store, opts Options) *gin.Engine {
	h := &handler{store: store, opts: opts.withDefaults()}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(TraceContextMiddleware())
	r.Use(CORSMiddleware(h.opts.CORS))
	r.Use(requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/approved_contest", h.listContests)
		api.GET("/approved_contest/:contestId/problems", h.listProblems)
		api.POST("/approved_contest/submit/:contestId/:username", h.submit)
		api.POST("/admin/add", h.addAdmin)
		api.GET("/admin/exists/:username", h.adminExists)
	}
	return r
}
