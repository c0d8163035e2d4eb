package indices

import (
	"context"
	"errors"
	"fmt"
	"skillbridge/bizerror"
	"skillbridge/client/es"
	"skillbridge/domain"
	"skillbridge/event"
	"skillbridge/session"
	"sync"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

var (
	ProjectIndexEventHandlerName = "projectIndexer"

	lock   sync.Mutex
	status SyncStatus

	IndicesFullSyncFunc    = IndicesFullSync
	ScheduleNewSyncRunFunc = ScheduleNewSyncRun
	CurrentSyncStatusFunc  = CurrentSyncStatus
)

// SyncStatus describes the latest full re-index run.
type SyncStatus struct {
	Running        bool            `json:"running"`
	LastStartTime  types.Timestamp `json:"lastStartTime"`
	LastFinishTime types.Timestamp `json:"lastFinishTime"`
	LastError      string          `json:"lastError,omitempty"`
}

func CurrentSyncStatus(sec *session.Session) (*SyncStatus, error) {
	if !sec.Perms.IsAdmin() {
		return nil, bizerror.ErrForbidden
	}
	lock.Lock()
	defer lock.Unlock()
	s := status
	return &s, nil
}

// ScheduleNewSyncRun starts a full re-index in background, unless one is running.
func ScheduleNewSyncRun(sec *session.Session) (bool, error) {
	if !sec.Perms.IsAdmin() {
		return false, bizerror.ErrForbidden
	}

	lock.Lock()
	if status.Running {
		lock.Unlock()
		return false, nil
	}
	status = SyncStatus{Running: true, LastStartTime: types.CurrentTimestamp()}
	lock.Unlock()

	waitRunning := sync.WaitGroup{}
	waitRunning.Add(1)
	go func() {
		waitRunning.Done()
		err := IndicesFullSyncFunc()
		if err != nil {
			logrus.Errorf("indices fully sync: %v", err)
		}

		lock.Lock()
		defer lock.Unlock()
		status.Running = false
		status.LastFinishTime = types.CurrentTimestamp()
		if err != nil {
			status.LastError = err.Error()
		}
	}()
	waitRunning.Wait()
	return true, nil
}

var (
	SyncBatchSize = 500
	// this many failed pages in a row abort the run
	SyncMaxPageFailures = 3
)

func IndicesFullSync() (err error) {
	defer func() {
		if ret := recover(); ret != nil {
			e, ok := ret.(error)
			if ok {
				err = e
			} else {
				err = fmt.Errorf("error on indices full sync: %v", ret)
			}
		}
	}()

	ctx := context.Background()
	page, failures := 1, 0
	for {
		projects, err := LoadProjectsPageFunc(ctx, page, SyncBatchSize)
		if err != nil {
			failures++
			logrus.Warnf("indices fully sync: error on retrieve projects(page = %d, pageSize = %d): %v", page, SyncBatchSize, err)
			if failures >= SyncMaxPageFailures {
				return err
			}
			page++
			continue
		}
		failures = 0

		if len(projects) == 0 {
			logrus.Infof("indices fully sync: there are no more projects to index")
			return nil
		}
		if err := IndexProjects(ctx, projects); err != nil {
			logrus.Warnf("indices fully sync: error on index projects(page = %d, pageSize = %d): %v", page, SyncBatchSize, err)
		}
		page++
	}
}

// ProjectIndexEventHandler keeps the search document of a project in line with the database.
func ProjectIndexEventHandler(e *event.EventRecord) *event.EventHandleResult {
	if e.SourceType != event.SourceTypeProject {
		return nil
	}
	ctx := context.Background()

	if e.EventCategory != event.EventCategoryProjectDeleted {
		p, err := LoadProjectDetailFunc(ctx, e.SourceId)
		if err == nil {
			if err := IndexProjects(ctx, []domain.ProjectDetail{*p}); err != nil {
				return &event.EventHandleResult{
					Message:           fmt.Sprintf("index project %d, %v", e.SourceId, err),
					HandlerIdentifier: ProjectIndexEventHandlerName,
				}
			}
			return &event.EventHandleResult{Success: true, HandlerIdentifier: ProjectIndexEventHandlerName}
		}
		if !errors.Is(err, bizerror.ErrProjectNotFound) {
			return &event.EventHandleResult{
				Message:           fmt.Sprintf("detail project when index project %d, %v", e.SourceId, err),
				HandlerIdentifier: ProjectIndexEventHandlerName,
			}
		}
		// deleted after the event was recorded
	}

	if err := es.DeleteDocumentByIdFunc(ctx, ProjectIndexName, e.SourceId); err != nil {
		return &event.EventHandleResult{
			Message:           fmt.Sprintf("delete project index %d, %v", e.SourceId, err),
			HandlerIdentifier: ProjectIndexEventHandlerName,
		}
	}
	return &event.EventHandleResult{Success: true, HandlerIdentifier: ProjectIndexEventHandlerName}
}
