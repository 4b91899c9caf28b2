// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector検証結果のラベル値
const (
	ResultSuccess  = "success"
	ResultMismatch = "mismatch"
	ResultNotFound = "not_found"
	ResultFailure  = "failure"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層から利用する。
type MetricsCollector interface {
	RecordSignupRequested()
	RecordOTPVerification(result string)
	RecordLogin(result string)
	RecordUserRegistered()
	RecordNoteCreated()
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	signupRequested prometheus.Counter
	otpVerification *prometheus.CounterVec
	logins          *prometheus.CounterVec
	usersRegistered prometheus.Counter
	notesCreated    prometheus.Counter
	httpStatus      *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		signupRequested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "memoapp_signup_requests_total",
			Help: "サインアップ（確認コード発行）リクエストの合計数",
		}),
		otpVerification: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "memoapp_otp_verifications_total",
			Help: "確認コード検証の結果別合計数",
		}, []string{"result"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "memoapp_logins_total",
			Help: "ログイン試行の結果別合計数",
		}, []string{"result"}),
		usersRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "memoapp_users_registered_total",
			Help: "登録完了したユーザーの合計数",
		}),
		notesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "memoapp_notes_created_total",
			Help: "作成されたメモの合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "memoapp_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.signupRequested,
		c.otpVerification,
		c.logins,
		c.usersRegistered,
		c.notesCreated,
		c.httpStatus,
	)

	return c
}

// RecordSignupRequested はサインアップリクエストを記録する。
func (c *Collector) RecordSignupRequested() {
	c.signupRequested.Inc()
}

// RecordOTPVerification は確認コード検証の結果を記録する。
func (c *Collector) RecordOTPVerification(result string) {
	c.otpVerification.WithLabelValues(result).Inc()
}

// RecordLogin はログイン試行の結果を記録する。
func (c *Collector) RecordLogin(result string) {
	c.logins.WithLabelValues(result).Inc()
}

// RecordUserRegistered は登録完了を記録する。
func (c *Collector) RecordUserRegistered() {
	c.usersRegistered.Inc()
}

// RecordNoteCreated はメモ作成を記録する。
func (c *Collector) RecordNoteCreated() {
	c.notesCreated.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
