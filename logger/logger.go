package backoffice_integration_logger

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"

	"github.com/go-playground/validator/v10"
	boModel "github.com/zarbox/backoffice-integration/models"
	boStorage "github.com/zarbox/backoffice-integration/storage"
	boUtil "github.com/zarbox/backoffice-integration/utils"
)

// Every API round trip is pushed through a channel and written to the audit
// table by a single worker, so the request path never blocks on the DB.

var logChan chan *boModel.APICallLog
var dbCon *sql.DB
var logVal *validator.Validate
var cancelFunc context.CancelFunc
var logMutex sync.Mutex
var running bool

func InitLogger() {
	logMutex.Lock()
	defer logMutex.Unlock()

	logChan = make(chan *boModel.APICallLog, 64)
	dbCon = boStorage.GetDBConnection()
	logVal = boUtil.GetValidator()

	ctx, cancel := context.WithCancel(context.Background())
	cancelFunc = cancel
	running = true

	go LogWorker(ctx)
}

func CloseLogger() {
	logMutex.Lock()
	defer logMutex.Unlock()

	if !running {
		return
	}
	running = false
	cancelFunc()
	close(logChan)
}

// LogCall queues one call record. It is a no-op when the logger was never
// initialized, which keeps the transport usable in tests and thin setups.
func LogCall(log *boModel.APICallLog) {
	logMutex.Lock()
	defer logMutex.Unlock()

	if !running {
		return
	}

	select {
	case logChan <- log:
	default:
		slog.Warn("audit log channel full, dropping entry", "uri", log.URI)
	}
}

func LogWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			slog.Debug("audit log worker is stopped")
			return
		case log, ok := <-logChan:
			if !ok {
				return
			}
			if log == nil {
				slog.Warn("nil log received, skipping")
				continue
			}

			if log.EndAt.IsZero() {
				// The http request was never sent, nothing to record
				slog.Debug("end time is zero, no http request was sent. skipping...")
				continue
			}

			if err := logVal.Struct(log); err != nil {
				slog.Error("failed to validate audit log", "reason", err)
				continue
			}

			if err := insertCallLog(context.Background(), log); err != nil {
				slog.Error("failed to insert audit log", "reason", err)
			}
		}
	}
}

func insertCallLog(ctx context.Context, log *boModel.APICallLog) error {
	if dbCon == nil {
		slog.Debug("audit db connection not configured, skipping insert")
		return nil
	}

	reqBody, err := boUtil.CompressData(log.RequestBody)
	if err != nil {
		reqBody = log.RequestBody
	}
	resBody, err := boUtil.CompressData(log.ResponseBody)
	if err != nil {
		resBody = log.ResponseBody
	}

	statement := `
	INSERT INTO api_call_log (http_method, uri, query, trace_id, status_code, latency, request_body, response_body, start_at, end_at)
	VALUES(?,?,?,?,?,?,?,?,?,?)
	`
	if _, err := dbCon.ExecContext(ctx, statement,
		log.HTTPMethod, log.URI, log.Query, log.TraceID, log.StatusCode,
		log.Latency, reqBody, resBody, log.StartAt, log.EndAt,
	); err != nil {
		return err
	}

	return nil
}
