package web

import (
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"attendance-console/internal/apiclient"
	"attendance-console/internal/config"
	"attendance-console/internal/dashboard"
	"attendance-console/internal/httpmiddleware"
	"attendance-console/internal/websession"
)

// Server hosts the console's browser-facing routes. All attendance data
// flows through the dashboard pipeline; nothing is computed or stored here.
type Server struct {
	cfg      config.App
	client   *apiclient.Client
	sessions *websession.Manager
}

// New wires the server to its collaborators.
func New(cfg config.App, client *apiclient.Client, sessions *websession.Manager) *Server {
	return &Server{cfg: cfg, client: client, sessions: sessions}
}

// Router builds the gin engine with middleware and routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(httpmiddleware.RequestID())
	r.Use(securityHeaders())

	r.SetHTMLTemplate(template.Must(template.New("console").Parse(consoleTemplates)))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", s.Healthz)

	limiter := httpmiddleware.NewLoginLimiter(s.cfg.RateLimitPerMin, s.cfg.RateLimitPerMin)
	r.GET("/", s.LoginPage)
	r.POST("/login", limiter.Middleware(), s.Login)

	authed := r.Group("/", s.sessions.RequireAuth())
	authed.GET("/dashboard", s.Dashboard)
	authed.POST("/logout", s.Logout)

	return r
}

// Healthz reports console liveness and backend reachability.
func (s *Server) Healthz(c *gin.Context) {
	err := s.client.Ping(c.Request.Context())
	status := http.StatusOK
	if err != nil {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"status": "ok", "backend": err == nil})
}

// LoginPage renders the credential form, or skips straight to the dashboard
// when a session is already held.
func (s *Server) LoginPage(c *gin.Context) {
	if _, ok := s.sessions.Upstream(c.Request); ok {
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}
	c.HTML(http.StatusOK, "login.html", gin.H{
		"Flashes":  s.sessions.ConsumeFlashes(c.Writer, c.Request),
		"Username": "",
	})
}

// Login submits credentials to the backend and stores the returned session
// cookie value. Rejections render a fixed generic message.
func (s *Server) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	if username == "" || password == "" {
		c.HTML(http.StatusBadRequest, "login.html", gin.H{
			"Error":    "Username and password are required",
			"Username": username,
		})
		return
	}

	sess, err := s.client.Login(c.Request.Context(), username, password)
	if err != nil {
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{
			"Error":    "Invalid credentials",
			"Username": username,
		})
		return
	}

	if err := s.sessions.SetUpstream(c.Writer, c.Request, sess.Value); err != nil {
		log.Printf("saving session failed: %v", err)
		c.HTML(http.StatusInternalServerError, "login.html", gin.H{
			"Error":    "Could not establish a session",
			"Username": username,
		})
		return
	}
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

// Dashboard runs one load cycle for the selected date and renders the
// projected view. A rejected session clears the operator's session and
// redirects to the entry point with no error banner.
func (s *Server) Dashboard(c *gin.Context) {
	sc := s.client.Bind(apiclient.Session{Value: c.GetString(websession.ContextKey)})

	date := time.Now()
	if q := c.Query("date"); q != "" {
		parsed, err := time.ParseInLocation("2006-01-02", q, time.Local)
		if err != nil {
			log.Printf("ignoring bad date query %q: %v", q, err)
		} else {
			date = parsed
		}
	}

	state, authFailed := dashboard.RunOnce(c.Request.Context(), sc, date)
	if authFailed {
		_ = s.sessions.Clear(c.Writer, c.Request)
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"View":    dashboard.Project(state),
		"Flashes": s.sessions.ConsumeFlashes(c.Writer, c.Request),
	})
}

// Logout drives the logout flow; its navigation signal becomes a redirect
// and its notifications become flashes on the next page.
func (s *Server) Logout(c *gin.Context) {
	sc := s.client.Bind(apiclient.Session{Value: c.GetString(websession.ContextKey)})

	navigated := false
	flow := dashboard.NewLogoutFlow(sc, func() { navigated = true }, s.flashNotifier(c))
	_ = flow.Logout(c.Request.Context())

	if navigated {
		_ = s.sessions.Clear(c.Writer, c.Request)
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

type flashNotifier struct {
	sessions *websession.Manager
	c        *gin.Context
}

func (s *Server) flashNotifier(c *gin.Context) flashNotifier {
	return flashNotifier{sessions: s.sessions, c: c}
}

func (n flashNotifier) Success(msg string) {
	n.sessions.AddFlash(n.c.Writer, n.c.Request, websession.Flash{Kind: "success", Message: msg})
}

func (n flashNotifier) Error(msg string) {
	n.sessions.AddFlash(n.c.Writer, n.c.Request, websession.Flash{Kind: "error", Message: msg})
}

// securityHeaders mirrors the headers the product's other services send.
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
