package realtime

import (
	"errors"
	"net/http"
	"skillbridge/bizerror"
	"skillbridge/session"
	"time"

	"github.com/gin-gonic/gin"
)

const PathRealtime = "/v1/realtime"

var HeartbeatInterval = 25 * time.Second

var errUnknownChannel = errors.New("unknown realtime channel")

func RegisterRealtimeRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathRealtime)
	g.Use(middleWares...)
	g.GET("", handleStream)
}

func handleStream(c *gin.Context) {
	s := session.ExtractSessionFromGinContext(c)
	channels := c.QueryArray("channel")
	if len(channels) == 0 {
		channels = []string{ChannelProjects}
	}
	for _, channel := range channels {
		kind, id, ok := ParseChannel(channel)
		if !ok {
			panic(&bizerror.ErrBadParam{Cause: errUnknownChannel})
		}
		if kind == "freelancer" && id != s.Identity.ID && !s.Perms.IsAdmin() {
			panic(bizerror.ErrForbidden)
		}
	}

	sub, err := ActiveBroadcaster.Subscribe(s.Ctx(), channels...)
	if err != nil {
		panic(&bizerror.DependencyError{Component: "realtime broadcaster", Cause: err})
	}
	defer sub.Close()

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.SSEvent("ready", gin.H{"channels": channels})
	c.Writer.Flush()

	heartbeat := time.NewTicker(HeartbeatInterval)
	defer heartbeat.Stop()
	done := c.Request.Context().Done()
	for {
		select {
		case <-done:
			return
		case <-heartbeat.C:
			c.SSEvent("ping", gin.H{"time": time.Now().Unix()})
		case msg, ok := <-sub.Messages():
			if !ok {
				return
			}
			c.SSEvent(msg.Type, &msg)
		}
		c.Writer.Flush()
	}
}
