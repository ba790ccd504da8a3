package httpserver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/exec"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"

	"vulnDemo/internal/gadget"
	"vulnDemo/models"
)

// Banner is the body served at the root path.
const Banner = "Vulnerable Go App – OWASP Demo"

const htmlContentType = "text/html; charset=utf-8"

// CredentialStore looks up users by raw username and password text.
type CredentialStore interface {
	FindByCredentials(ctx context.Context, username, password string) (*models.User, error)
}

// Handler serves the demo routes. Handlers share no state beyond what is on disk.
type Handler struct {
	users CredentialStore
	fs    afero.Fs
	shell string
	log   *slog.Logger
}

// NewHandler wires the route handlers. fs is where /readfile reads from and
// shell is the interpreter /ping runs its command line under.
func NewHandler(users CredentialStore, fs afero.Fs, shell string, logger *slog.Logger) *Handler {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if shell == "" {
		shell = "sh"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{users: users, fs: fs, shell: shell, log: logger}
}

// Home serves the banner.
func (h *Handler) Home(c *gin.Context) {
	c.String(http.StatusOK, Banner)
}

// Login checks form credentials against the users table.
// Store errors are left to the error middleware.
func (h *Handler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	u, err := h.users.FindByCredentials(c.Request.Context(), username, password)
	if err != nil {
		_ = c.Error(err)
		c.Abort()
		return
	}
	if u == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Login successful"})
}

// Ping runs "ping -c 1 <host>" through the shell and echoes whatever it printed.
func (h *Handler) Ping(c *gin.Context) {
	host := c.DefaultQuery("host", "127.0.0.1")
	line := "ping -c 1 " + host
	h.log.Debug("running ping", "command", line)

	// failures show up in the captured output, nothing else
	out, _ := exec.Command(h.shell, "-c", line).CombinedOutput()
	c.Data(http.StatusOK, htmlContentType, pre(out))
}

// Deserialize rebuilds the object encoded in a base64 gob body.
func (h *Handler) Deserialize(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	obj, err := gadget.DecodeBase64(strings.TrimSpace(string(body)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": fmt.Sprint(obj)})
}

// ReadFile returns the file named by the query, read as given. Contents must
// be UTF-8 text; anything else is reported like any other read failure.
func (h *Handler) ReadFile(c *gin.Context) {
	name := c.DefaultQuery("file", "/etc/passwd")
	data, err := afero.ReadFile(h.fs, name)
	if err == nil && !utf8.Valid(data) {
		err = fmt.Errorf("read %s: invalid UTF-8 text", name)
	}
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, htmlContentType, pre(data))
}

func pre(b []byte) []byte {
	out := make([]byte, 0, len(b)+len("<pre></pre>"))
	out = append(out, "<pre>"...)
	out = append(out, b...)
	return append(out, "</pre>"...)
}
