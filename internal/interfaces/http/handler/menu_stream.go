package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appmenu "github.com/littlelemon/menu/internal/application/menu"
	"github.com/littlelemon/menu/internal/domain/menu"
	"github.com/littlelemon/menu/internal/infrastructure/logger"
	"github.com/littlelemon/menu/internal/interfaces/http/dto"
	"github.com/littlelemon/menu/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// SSE event names
const (
	EventConnected = "connected"
	EventMenu      = "menu"
	EventHeartbeat = "heartbeat"
)

// SSEMessage is one server-sent event
type SSEMessage struct {
	Event string `json:"event"`
	Data  string `json:"data"`
	ID    string `json:"id,omitempty"`
}

// MenuStreamEvent is the payload of a "menu" event
type MenuStreamEvent struct {
	Items     []appmenu.MenuItemResponse `json:"items"`
	Total     int                        `json:"total"`
	Search    string                     `json:"search"`
	Sort      string                     `json:"sort"`
	SortLabel string                     `json:"sort_label"`
}

// StreamStateRequest replaces the view state of an open stream.
// An empty sort keeps the current direction.
type StreamStateRequest struct {
	Search string `json:"search" form:"search" binding:"max=200"`
	Sort   string `json:"sort" form:"sort" binding:"omitempty,oneof=asc desc"`
}

// StreamStateResponse reports the view state of an open stream
type StreamStateResponse struct {
	ClientID  string `json:"client_id"`
	Search    string `json:"search"`
	Sort      string `json:"sort"`
	SortLabel string `json:"sort_label"`
	Total     int    `json:"total"`
}

type streamClient struct {
	id   string
	vm   *appmenu.ViewModel
	done chan struct{}
	once sync.Once
}

func (c *streamClient) close() {
	c.once.Do(func() { close(c.done) })
}

// MenuStreamHandler streams the visible list to browsers over SSE.
// Each connection follows the store through its own ViewModel.
type MenuStreamHandler struct {
	BaseHandler
	repo       menu.MenuItemRepository
	logger     *zap.Logger
	clients    sync.Map // map[string]*streamClient
	ctx        context.Context
	cancel     context.CancelFunc
	heartbeat  time.Duration
	maxClients int
}

// MenuStreamOption is a functional option for configuring the handler
type MenuStreamOption func(*MenuStreamHandler)

// WithStreamLogger sets the logger for the handler
func WithStreamLogger(logger *zap.Logger) MenuStreamOption {
	return func(h *MenuStreamHandler) {
		h.logger = logger
	}
}

// WithStreamHeartbeat sets the heartbeat interval
func WithStreamHeartbeat(interval time.Duration) MenuStreamOption {
	return func(h *MenuStreamHandler) {
		if interval > 0 {
			h.heartbeat = interval
		}
	}
}

// WithStreamMaxClients sets the maximum number of concurrent streams. Zero means no limit.
func WithStreamMaxClients(max int) MenuStreamOption {
	return func(h *MenuStreamHandler) {
		h.maxClients = max
	}
}

// NewMenuStreamHandler creates a new MenuStreamHandler
func NewMenuStreamHandler(repo menu.MenuItemRepository, opts ...MenuStreamOption) *MenuStreamHandler {
	ctx, cancel := context.WithCancel(context.Background())
	h := &MenuStreamHandler{
		repo:       repo,
		logger:     zap.NewNop(),
		ctx:        ctx,
		cancel:     cancel,
		heartbeat:  30 * time.Second,
		maxClients: 1000,
	}

	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.Named("menu_stream")

	return h
}

// Stop ends every open stream
func (h *MenuStreamHandler) Stop() {
	h.cancel()

	h.clients.Range(func(_, value any) bool {
		if client, ok := value.(*streamClient); ok {
			client.close()
		}
		return true
	})

	h.logger.Info("menu stream handler stopped")
}

// ClientCount returns the number of connected clients
func (h *MenuStreamHandler) ClientCount() int {
	count := 0
	h.clients.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

// Stream godoc
// @Summary      Live menu stream
// @Description  Server-sent events: "connected" with the client id, then a "menu" event with the visible list now and after every store or state change
// @Tags         menu-stream
// @Produce      text/event-stream
// @Param        search query string false "Case-insensitive name filter"
// @Param        sort   query string false "Name order" Enums(asc, desc) default(desc)
// @Success      200 {object} MenuStreamEvent
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /menu/stream [get]
func (h *MenuStreamHandler) Stream(c *gin.Context) {
	var query ListMenuQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	if h.ctx.Err() != nil {
		h.ServiceUnavailable(c, "Live updates are shutting down")
		return
	}
	if h.maxClients > 0 && h.ClientCount() >= h.maxClients {
		h.ServiceUnavailable(c, "Maximum number of live connections reached")
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()
	stop := context.AfterFunc(h.ctx, cancel)
	defer stop()

	state := query.ViewState()
	reqLogger := logger.GetGinLogger(c)
	vm := appmenu.NewViewModel(h.repo, state, reqLogger)
	if err := vm.Start(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		h.HandleError(c, err)
		return
	}

	client := &streamClient{id: uuid.NewString(), vm: vm, done: make(chan struct{})}
	h.clients.Store(client.id, client)
	defer h.clients.Delete(client.id)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	h.logger.Debug("stream client connected",
		zap.String("client_id", client.id),
		zap.String("search", state.SearchPhrase),
		zap.Bool("ascending", state.SortAscending))

	h.sendEvent(c.Writer, SSEMessage{
		Event: EventConnected,
		Data:  fmt.Sprintf(`{"client_id":%q,"timestamp":%d}`, client.id, time.Now().Unix()),
	})
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	var seq uint64
	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("stream client disconnected", zap.String("client_id", client.id))
			return
		case <-client.done:
			return
		case <-ticker.C:
			h.sendEvent(c.Writer, SSEMessage{
				Event: EventHeartbeat,
				Data:  fmt.Sprintf(`{"timestamp":%d}`, time.Now().Unix()),
			})
			c.Writer.Flush()
		case items, ok := <-vm.Updates():
			if !ok {
				return
			}
			current := vm.State()
			query := ListMenuQueryFromState(current)
			data, err := json.Marshal(MenuStreamEvent{
				Items:     appmenu.ToMenuItemResponses(items),
				Total:     len(items),
				Search:    query.Search,
				Sort:      query.Sort,
				SortLabel: current.SortLabel(),
			})
			if err != nil {
				h.logger.Error("failed to marshal menu event", zap.Error(err))
				continue
			}
			seq++
			h.sendEvent(c.Writer, SSEMessage{
				Event: EventMenu,
				Data:  string(data),
				ID:    strconv.FormatUint(seq, 10),
			})
			c.Writer.Flush()
		}
	}
}

// UpdateState changes the search phrase and sort direction of one stream.
// The stream then sends the re-derived list as its next "menu" event.
//
// @Summary      Update live view state
// @Description  Replace the search phrase and, when sort is given, the sort direction of an open stream
// @Tags         menu-stream
// @Accept       json
// @Produce      json
// @Param        client  path string             true "Client id from the connected event"
// @Param        request body StreamStateRequest true "View state"
// @Success      200 {object} dto.Response{data=StreamStateResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /menu/stream/{client} [put]
func (h *MenuStreamHandler) UpdateState(c *gin.Context) {
	client, ok := h.client(c)
	if !ok {
		return
	}

	var req StreamStateRequest
	if err := c.ShouldBind(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	client.vm.SetSearchPhrase(req.Search)
	if req.Sort != "" {
		client.vm.SetSortAscending(req.Sort == SortAscending)
	}

	h.Success(c, h.stateResponse(client))
}

// ToggleSort godoc
// @Summary      Toggle live sort direction
// @Description  Flip an open stream between ascending and descending name order
// @Tags         menu-stream
// @Produce      json
// @Param        client path string true "Client id from the connected event"
// @Success      200 {object} dto.Response{data=StreamStateResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /menu/stream/{client}/toggle [post]
func (h *MenuStreamHandler) ToggleSort(c *gin.Context) {
	client, ok := h.client(c)
	if !ok {
		return
	}

	client.vm.ToggleSort()

	h.Success(c, h.stateResponse(client))
}

func (h *MenuStreamHandler) client(c *gin.Context) (*streamClient, bool) {
	value, ok := h.clients.Load(c.Param("client"))
	if !ok {
		h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, "Live connection not found")
		return nil, false
	}
	return value.(*streamClient), true
}

func (h *MenuStreamHandler) stateResponse(client *streamClient) StreamStateResponse {
	state := client.vm.State()
	query := ListMenuQueryFromState(state)
	return StreamStateResponse{
		ClientID:  client.id,
		Search:    query.Search,
		Sort:      query.Sort,
		SortLabel: state.SortLabel(),
		Total:     len(client.vm.Visible()),
	}
}

// sendEvent writes an SSE event to the response writer
func (h *MenuStreamHandler) sendEvent(w io.Writer, msg SSEMessage) {
	if msg.Event != "" {
		fmt.Fprintf(w, "event: %s\n", msg.Event)
	}
	if msg.ID != "" {
		fmt.Fprintf(w, "id: %s\n", msg.ID)
	}
	fmt.Fprintf(w, "data: %s\n\n", msg.Data)
}
