package notification

import (
	"net/http"
	"skillbridge/bizerror"
	"skillbridge/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const PathNotifications = "/v1/notifications"

func RegisterNotificationsRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathNotifications, middleWares...)
	g.GET("", handleQueryNotifications)
	g.POST("", handleCreateNotification)
	g.PATCH("", handleMarkNotificationsRead)
	g.DELETE("", handleClearNotifications)
	g.PATCH(":id", handleMarkNotificationRead)
	g.DELETE(":id", handleDeleteNotification)
}

func handleQueryNotifications(c *gin.Context) {
	q := NotificationQuery{}
	if err := c.ShouldBindQuery(&q); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	result, err := QueryNotificationsFunc(&q, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func handleCreateNotification(c *gin.Context) {
	creation := NotificationCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	n, err := CreateNotificationFunc(&creation, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, n)
}

func handleMarkNotificationsRead(c *gin.Context) {
	m := MarkRead{}
	if err := c.ShouldBindBodyWith(&m, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	count, err := MarkNotificationsReadFunc(&m, session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{"updated": count})
}

func handleClearNotifications(c *gin.Context) {
	count, err := ClearNotificationsFunc(session.ExtractSessionFromGinContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, gin.H{"deleted": count})
}

func handleMarkNotificationRead(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := MarkNotificationReadFunc(id, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func handleDeleteNotification(c *gin.Context) {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := DeleteNotificationFunc(id, session.ExtractSessionFromGinContext(c)); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}
