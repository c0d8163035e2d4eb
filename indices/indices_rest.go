package indices

import (
	"net/http"
	"skillbridge/session"

	"github.com/gin-gonic/gin"
)

const PathIndexRequests = "/v1/index-requests"

// IndexRequestResult tells whether a full sync was started and what the sync state is now.
type IndexRequestResult struct {
	Result bool        `json:"result"`
	Status *SyncStatus `json:"status,omitempty"`
}

func RegisterIndicesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathIndexRequests, middleWares...)
	g.POST("", handleIndexRequest)
	g.GET("", handleIndexStatus)
}

// handleIndexRequest answers 202 when a run was started and 200 when one is already running.
func handleIndexRequest(c *gin.Context) {
	sec := session.ExtractSessionFromGinContext(c)
	started, err := ScheduleNewSyncRunFunc(sec)
	if err != nil {
		panic(err)
	}
	s, err := CurrentSyncStatusFunc(sec)
	if err != nil {
		panic(err)
	}
	code := http.StatusOK
	if started {
		code = http.StatusAccepted
	}
	c.JSON(code, &IndexRequestResult{Result: started, Status: s})
}

func handleIndexStatus(c *gin.Context) {
	s, err := CurrentSyncStatusFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, s)
}
