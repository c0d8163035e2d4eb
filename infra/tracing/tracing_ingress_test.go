package tracing

import (
	"net/http"
	"net/http/httptest"
	"skillbridge/testinfra"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/opentracing/opentracing-go/mocktracer"
)

func TestTracingIngress(t *testing.T) {
	RegisterTestingT(t)

	tracer := mocktracer.New()
	opentracing.SetGlobalTracer(tracer)
	defer opentracing.SetGlobalTracer(opentracing.NoopTracer{})

	var seen opentracing.Span
	router := gin.New()
	router.Use(TracingIngress("/metrics"))
	router.GET("/v1/projects", func(c *gin.Context) {
		seen = opentracing.SpanFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})
	router.PATCH("/v1/projects/:id", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})
	router.GET("/metrics", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	t.Run("should start a root span and expose it to handlers", func(t *testing.T) {
		tracer.Reset()

		req := httptest.NewRequest(http.MethodGet, "/v1/projects", nil)
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))

		spans := tracer.FinishedSpans()
		Expect(spans).To(HaveLen(1))
		Expect(spans[0].OperationName).To(Equal("GET /v1/projects"))
		Expect(spans[0].ParentID).To(BeZero())
		Expect(spans[0].Tag("component")).To(Equal("gin"))
		Expect(spans[0].Tag("http.status_code")).To(Equal(uint16(200)))
		Expect(spans[0].Tag("error")).To(BeNil())
		Expect(seen).To(BeIdenticalTo(spans[0]))
	})

	t.Run("should join the trace of the caller", func(t *testing.T) {
		tracer.Reset()

		gateway := tracer.StartSpan("gateway")
		req := httptest.NewRequest(http.MethodGet, "/v1/projects", nil)
		Expect(tracer.Inject(gateway.Context(), opentracing.HTTPHeaders, opentracing.HTTPHeadersCarrier(req.Header))).To(Succeed())
		status, _, _ := testinfra.ExecuteRequest(req, router)
		gateway.Finish()
		Expect(status).To(Equal(http.StatusOK))

		spans := tracer.FinishedSpans()
		Expect(spans).To(HaveLen(2))
		server, caller := spans[0], spans[1]
		Expect(caller.OperationName).To(Equal("gateway"))
		Expect(server.ParentID).To(Equal(caller.SpanContext.SpanID))
		Expect(server.SpanContext.TraceID).To(Equal(caller.SpanContext.TraceID))
		Expect(server.Tag("span.kind")).To(Equal(ext.SpanKindRPCServerEnum))
	})

	t.Run("should name spans after the route and flag server errors", func(t *testing.T) {
		tracer.Reset()

		req := httptest.NewRequest(http.MethodPatch, "/v1/projects/10?dryRun=1", nil)
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusInternalServerError))

		spans := tracer.FinishedSpans()
		Expect(spans).To(HaveLen(1))
		Expect(spans[0].OperationName).To(Equal("PATCH /v1/projects/:id"))
		Expect(spans[0].Tag("http.route")).To(Equal("/v1/projects/:id"))
		Expect(spans[0].Tag("http.url")).To(Equal("/v1/projects/10?dryRun=1"))
		Expect(spans[0].Tag("http.status_code")).To(Equal(uint16(500)))
		Expect(spans[0].Tag("error")).To(Equal(true))
	})

	t.Run("should fall back to the raw path for unknown routes", func(t *testing.T) {
		tracer.Reset()

		req := httptest.NewRequest(http.MethodGet, "/v1/unknown", nil)
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusNotFound))
		Expect(tracer.FinishedSpans()).To(HaveLen(1))
		Expect(tracer.FinishedSpans()[0].OperationName).To(Equal("GET /v1/unknown"))
	})

	t.Run("should not trace skipped paths", func(t *testing.T) {
		tracer.Reset()

		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(tracer.FinishedSpans()).To(BeEmpty())
	})
}

func TestInitGlobalTracer(t *testing.T) {
	RegisterTestingT(t)

	t.Run("disabled tracing keeps the global tracer", func(t *testing.T) {
		before := opentracing.GlobalTracer()
		closer, err := InitGlobalTracer(Config{Enabled: false}, "skillbridge")
		Expect(err).To(BeNil())
		Expect(closer.Close()).To(Succeed())
		Expect(opentracing.GlobalTracer()).To(BeIdenticalTo(before))
	})
}
