package notification_test

import (
	"net/http"
	"net/http/httptest"
	"skillbridge/bizerror"
	"skillbridge/misc"
	"skillbridge/notification"
	"skillbridge/session"
	"skillbridge/testinfra"
	"strings"
	"testing"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func restRouter() *gin.Engine {
	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	notification.RegisterNotificationsRestAPI(router, testinfra.InjectSession(testinfra.BuildSession(1, "student")))
	return router
}

func TestNotificationsRestAPI(t *testing.T) {
	RegisterTestingT(t)
	defer func() {
		notification.QueryNotificationsFunc = notification.QueryNotifications
		notification.MarkNotificationsReadFunc = notification.MarkNotificationsRead
		notification.MarkNotificationReadFunc = notification.MarkNotificationRead
		notification.DeleteNotificationFunc = notification.DeleteNotification
		notification.ClearNotificationsFunc = notification.ClearNotifications
	}()
	router := restRouter()

	t.Run("should query notifications of current user", func(t *testing.T) {
		var q *notification.NotificationQuery
		var uid types.ID
		notification.QueryNotificationsFunc = func(query *notification.NotificationQuery, sec *session.Session) (*misc.PagedBody, error) {
			q, uid = query, sec.Identity.ID
			return &misc.PagedBody{List: []notification.Notification{}, Total: 0}, nil
		}
		req := httptest.NewRequest(http.MethodGet, notification.PathNotifications+"?unreadOnly=true&page=2&size=5", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"list":[],"total":0}`))
		Expect(uid).To(Equal(types.ID(1)))
		Expect(*q).To(Equal(notification.NotificationQuery{UnreadOnly: true, PageQuery: misc.PageQuery{Page: 2, Size: 5}}))

		req = httptest.NewRequest(http.MethodGet, notification.PathNotifications+"?size=500", nil)
		status, _, _ = testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
	})

	t.Run("should validate notification creation", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, notification.PathNotifications, strings.NewReader(`{"recipientId":"1","type":"spam","title":"t"}`))
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
	})

	t.Run("should mark notifications read in bulk", func(t *testing.T) {
		var m *notification.MarkRead
		notification.MarkNotificationsReadFunc = func(mark *notification.MarkRead, sec *session.Session) (int64, error) {
			m = mark
			return 2, nil
		}
		req := httptest.NewRequest(http.MethodPatch, notification.PathNotifications, strings.NewReader(`{"ids":["5","6"]}`))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"updated":2}`))
		Expect(m.IDs).To(Equal([]types.ID{5, 6}))
	})

	t.Run("should mark single notification read", func(t *testing.T) {
		notification.MarkNotificationReadFunc = func(id types.ID, sec *session.Session) error {
			if id == 404 {
				return bizerror.ErrNotificationNotFound
			}
			return nil
		}
		req := httptest.NewRequest(http.MethodPatch, notification.PathNotifications+"/7", nil)
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusNoContent))

		req = httptest.NewRequest(http.MethodPatch, notification.PathNotifications+"/404", nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusNotFound))
		Expect(body).To(MatchJSON(`{"code":"common.record_not_found","message":"notification not found","data":null}`))
	})

	t.Run("should delete single or all notifications", func(t *testing.T) {
		var deleted types.ID
		notification.DeleteNotificationFunc = func(id types.ID, sec *session.Session) error {
			deleted = id
			return nil
		}
		notification.ClearNotificationsFunc = func(sec *session.Session) (int64, error) {
			return 3, nil
		}
		req := httptest.NewRequest(http.MethodDelete, notification.PathNotifications+"/8", nil)
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusNoContent))
		Expect(deleted).To(Equal(types.ID(8)))

		req = httptest.NewRequest(http.MethodDelete, notification.PathNotifications, nil)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"deleted":3}`))
	})
}
