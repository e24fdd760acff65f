// Copyright 2020 Qiniu Cloud (qiniu.com)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package web

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/admission-interview/internal/common/utils"
	"github.com/solutions/admission-interview/internal/protodef/model"
	"github.com/solutions/admission-interview/internal/service/cloud"
	"github.com/solutions/admission-interview/internal/service/events"
	"github.com/solutions/admission-interview/internal/service/web/handler"
	"github.com/solutions/admission-interview/internal/service/web/middleware"
)

// SlotService 可预约时间点，包括根据日程在本地计算的部分。
type SlotService interface {
	handler.SlotInterface
	handler.LocalSlotInterface
}

// Services 路由依赖的各个服务，由 main 创建。
type Services struct {
	Interview    handler.InterviewInterface
	Reminders    handler.ReminderInterface
	Events       handler.EventInterface
	Templates    handler.TemplateInterface
	Schedules    handler.ScheduleInterface
	Slots        SlotService
	Rescheduler  handler.ReschedulerInterface
	Stats        handler.StatsInterface
	Export       handler.ExportInterface
	Verification handler.VerificationInterface
	Hub          *events.Hub
	IM           cloud.IMService
}

// NewRouter 返回gin router，分流API。
func NewRouter(config *utils.Config, s *Services) *gin.Engine {
	loc := config.Location()

	// 1. 初始化GIN
	router := gin.New()
	router.Use(gin.Recovery())
	// 1.1. 全局CORS配置
	router.Use(corsMiddleware(config.AllowOrigins))
	router.Use(middleware.AddRequestID, middleware.AccessLog)

	// 2. 声明Handler
	interview := handler.NewInterviewApiHandler(s.Interview, s.Reminders, s.Events, s.Templates, s.Slots, loc)
	calendar := handler.NewCalendarApiHandler(s.Interview, s.Rescheduler, s.Reminders, s.Events, s.Hub, s.IM, loc)
	report := handler.NewReportApiHandler(s.Stats, s.Export)
	reminder := handler.NewReminderApiHandler(s.Interview, s.Reminders)
	schedule := handler.NewScheduleApiHandler(s.Schedules, s.Slots)
	template := handler.NewTemplateApiHandler(s.Templates)
	email := handler.NewEmailApiHandler(s.Verification)

	router.GET("/api/health", health)

	// 3. 需要登录的接口
	api := router.Group("/api", middleware.Authenticate(config.JwtKey))
	{
		// 3.1 面试
		api.GET("interviews", interview.ListInterviews)
		api.POST("interviews", interview.CreateInterview)
		api.GET("interviews/statistics", report.Statistics)
		api.GET("interviews/dashboard", report.Dashboard)
		api.GET("interviews/export", report.ExportInterviews)
		api.GET("interviews/availability", interview.CheckAvailability)
		api.GET("interviews/available-slots", interview.AvailableSlots)
		api.GET("interviews/upcoming", interview.UpcomingInterviews)
		api.GET("interviews/application/:applicationId", interview.ListByApplication)
		api.GET("interviews/:id", interview.GetInterview)
		api.PUT("interviews/:id", interview.UpdateInterview)
		api.DELETE("interviews/:id", interview.DeleteInterview)

		// 3.2 状态变更
		api.POST("interviews/:id/confirm", interview.ConfirmInterview)
		api.POST("interviews/:id/start", interview.StartInterview)
		api.POST("interviews/:id/complete", interview.CompleteInterview)
		api.POST("interviews/:id/cancel", interview.CancelInterview)
		api.POST("interviews/:id/reschedule", interview.RescheduleInterview)
		api.POST("interviews/:id/no-show", interview.MarkNoShow)
		api.POST("interviews/:id/notifications", interview.SendNotification)

		// 3.3 提醒
		api.GET("interviews/:id/reminders", middleware.FetchPageInfo, reminder.ListReminders)
		api.POST("interviews/:id/reminders", reminder.ScheduleReminder)
		api.DELETE("reminders/:reminderId", reminder.CancelReminder)

		// 3.4 日历
		api.GET("interviews/calendar", calendar.Calendar)
		api.POST("interviews/calendar/drop/plan", calendar.PlanDrop)
		api.POST("interviews/calendar/drop/commit", calendar.CommitDrop)
		api.GET("interviews/events/ws", calendar.EventFeed)
		api.GET("interviews/notifications/im-token", calendar.IMToken)

		// 3.5 面试官日程
		api.GET("interviewer-schedules/interviewers", schedule.Interviewers)
		api.GET("interviewer-schedules/available", schedule.AvailableInterviewers)
		api.GET("interviewer-schedules/interviewer/:id", schedule.InterviewerSchedules)
		api.GET("interviewer-schedules/interviewer/:id/slots", schedule.InterviewerSlots)
		api.POST("interviewer-schedules", schedule.CreateSchedule)
		api.POST("interviewer-schedules/recurring/:id", schedule.CreateRecurring)
		api.PUT("interviewer-schedules/:id", schedule.UpdateSchedule)
		api.DELETE("interviewer-schedules/:id", schedule.DeleteSchedule)

		// 3.6 模板
		api.GET("templates", template.ListTemplates)
		api.GET("templates/stats", template.TemplateStats)
		api.GET("templates/:id", template.GetTemplate)
		api.POST("templates", template.CreateTemplate)
		api.DELETE("templates/:id", template.DeleteTemplate)
		api.POST("templates/:id/use", template.UseTemplate)

		// 3.7 邮箱验证
		api.POST("email/send-verification", email.SendVerification)
		api.POST("email/verify-code", email.VerifyCode)
		api.GET("email/status", email.VerificationStatus)
		api.POST("users/check-rut", email.CheckRut)
	}

	router.NoRoute(returnNotFound)
	router.RedirectTrailingSlash = false

	return router
}

// HealthResponse 健康检查结果。
type HealthResponse struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

func health(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	model.NewSuccessResponse(&HealthResponse{Status: "ok", Time: time.Now()}).WithRequestID(xl.ReqId).Send(c)
}

func returnNotFound(c *gin.Context) {
	xl := c.MustGet(model.XLogKey).(*xlog.Logger)
	xl.Debugf("%s %s: not found", c.Request.Method, c.Request.URL.Path)
	responseErr := model.NewResponseErrorNotFound()
	model.NewFailResponse(*responseErr).WithRequestID(xl.ReqId).Send(c)
}

// corsMiddleware 未配置 allow_origins 时允许所有来源。
func corsMiddleware(allowOrigins []string) gin.HandlerFunc {
	conf := cors.DefaultConfig()
	if len(allowOrigins) == 0 {
		conf.AllowAllOrigins = true
	} else {
		conf.AllowOrigins = allowOrigins
	}
	conf.AllowCredentials = len(allowOrigins) > 0
	conf.AddAllowHeaders("Authorization", "X-Requested-With", model.RequestIDHeader)
	conf.AddExposeHeaders(model.RequestIDHeader, "Content-Disposition")
	return cors.New(conf)
}
