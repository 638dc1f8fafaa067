package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"kudos/internal/achievement"
	"kudos/internal/daemon"
	"kudos/internal/journal"
	"kudos/internal/logging"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path. The shutdown
// callback is invoked when a client requests daemon stop; it should cancel
// the process context.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger, shutdown func()) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logging.NewComponentLogger(logger, "ipc"), ctx: ctx, shutdown: shutdown}
	if err := rpcServer.RegisterName("Kudos", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				logging.WarnWithContext(s.logger, "accept failed", "ipc_accept_failed",
					logging.Error(err),
					logging.String(logging.FieldImpact, "IPC clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "check socket permissions and restart the daemon if needed"),
				)
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		logging.WarnWithContext(s.logger, "failed to remove socket", "ipc_socket_cleanup_failed",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "stale IPC socket may block future starts"),
			logging.String(logging.FieldErrorHint, "remove the socket file manually"),
		)
	}
}

type service struct {
	daemon   *daemon.Daemon
	logger   *slog.Logger
	ctx      context.Context
	shutdown func()
}

func convertNotification(item achievement.Notification) Notification {
	return Notification{
		ID:              item.ID,
		AchievementID:   item.AchievementID,
		AchievementType: string(item.Achievement.Type),
		Title:           item.Achievement.Title,
		Description:     item.Achievement.Description,
		CreatedAt:       item.CreatedAt,
		AchievedAt:      item.Achievement.AchievedAt,
	}
}

func convertHistoryEntry(entry journal.Entry) HistoryEntry {
	return HistoryEntry{
		PresentationID:  entry.ID,
		NotificationID:  entry.NotificationID,
		AchievementID:   entry.AchievementID,
		AchievementType: string(entry.AchievementType),
		Title:           entry.Title,
		ShownAt:         entry.ShownAt,
		AckedAt:         entry.AckedAt,
		Acknowledged:    entry.Acknowledged(),
		MarkReadOK:      entry.MarkReadOK,
		MarkReadError:   entry.MarkReadError,
	}
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status()
	resp.Running = status.Running
	resp.PID = os.Getpid()
	resp.StartedAt = status.StartedAt
	resp.UserID = status.UserID
	resp.State = string(status.State)
	resp.PendingCount = status.PendingCount
	resp.Settling = status.Settling
	resp.LiveFeed = status.LiveFeed
	resp.LastReloadAt = status.LastReloadAt
	resp.LastReloadError = status.LastReloadError
	if status.Current != nil {
		showing := convertNotification(*status.Current)
		resp.Showing = &showing
	}
	return nil
}

func (s *service) Pending(_ PendingRequest, resp *PendingResponse) error {
	items := s.daemon.Pending()
	resp.Items = make([]Notification, 0, len(items))
	for _, item := range items {
		resp.Items = append(resp.Items, convertNotification(item))
	}
	return nil
}

func (s *service) Dismiss(req DismissRequest, resp *DismissResponse) error {
	if s.daemon.Dismiss(s.ctx, req.NotificationID) {
		resp.Dismissed = true
		resp.Message = "notification dismissed"
		return nil
	}
	resp.Dismissed = false
	if req.NotificationID != "" {
		resp.Message = fmt.Sprintf("notification %s is not currently showing", req.NotificationID)
	} else {
		resp.Message = "nothing is currently showing"
	}
	return nil
}

func (s *service) Reload(_ ReloadRequest, resp *ReloadResponse) error {
	s.daemon.RequestReload()
	resp.Requested = true
	return nil
}

func (s *service) History(req HistoryRequest, resp *HistoryResponse) error {
	entries, err := s.daemon.History(s.ctx, req.Limit)
	if err != nil {
		return err
	}
	resp.Entries = make([]HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		resp.Entries = append(resp.Entries, convertHistoryEntry(entry))
	}
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	if err := s.daemon.TestNotification(s.ctx); err != nil {
		resp.Sent = false
		resp.Message = err.Error()
		return nil
	}
	resp.Sent = true
	resp.Message = "test notification sent"
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.logger.Info("daemon stop requested via IPC",
		logging.String(logging.FieldEventType, "daemon_stop_requested"))
	resp.Stopping = true
	if s.shutdown != nil {
		// Deferred so the response reaches the client before teardown.
		time.AfterFunc(100*time.Millisecond, s.shutdown)
	}
	return nil
}
