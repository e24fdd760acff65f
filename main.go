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

package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/jasonlvhit/gocron"
	"github.com/qiniu/x/log"
	"github.com/qiniu/x/xlog"

	"github.com/solutions/admission-interview/internal/common/utils"
	"github.com/solutions/admission-interview/internal/service/calendar"
	"github.com/solutions/admission-interview/internal/service/cloud"
	"github.com/solutions/admission-interview/internal/service/cloud/admission"
	"github.com/solutions/admission-interview/internal/service/db"
	"github.com/solutions/admission-interview/internal/service/events"
	"github.com/solutions/admission-interview/internal/service/export"
	"github.com/solutions/admission-interview/internal/service/reminder"
	"github.com/solutions/admission-interview/internal/service/schedule"
	"github.com/solutions/admission-interview/internal/service/stats"
	"github.com/solutions/admission-interview/internal/service/task"
	"github.com/solutions/admission-interview/internal/service/template"
	"github.com/solutions/admission-interview/internal/service/verification"
	"github.com/solutions/admission-interview/internal/service/web"
)

var (
	configFilePath = "admission-interview.conf"
)

// openStorage 未配置 mongo 或连接失败时使用内存存储，重启后数据丢失。
func openStorage(conf *utils.Config) (db.Storage, db.ReminderLog) {
	if conf.Mongo == nil || conf.Mongo.URI == "" {
		log.Warn("mongo not configured, use in-memory storage")
		return db.NewMemoryStorage(), db.NewMemoryReminderLog()
	}
	session, err := db.Dial(conf.Mongo)
	if err != nil {
		log.Errorf("failed to connect mongo %s, use in-memory storage, error %v", conf.Mongo.URI, err)
		return db.NewMemoryStorage(), db.NewMemoryReminderLog()
	}
	storage, err := db.NewMongoStorage(session, conf.Mongo.Database)
	if err != nil {
		log.Fatalf("failed to create mongo storage, error %v", err)
	}
	reminderLog, err := db.NewMongoReminderLog(session, conf.Mongo.Database)
	if err != nil {
		log.Fatalf("failed to create reminder log, error %v", err)
	}
	return storage, reminderLog
}

func main() {
	flag.StringVar(&configFilePath, "f", configFilePath, "configuration file to run admission interview server")
	flag.Parse()

	utils.InitConf(configFilePath)
	conf := &utils.DefaultConf
	log.SetOutputLevel(conf.DebugLevel)
	if conf.Admission == nil || conf.Admission.Endpoint == "" {
		log.Fatal("admission endpoint not configured")
	}
	if conf.JwtKey == "" {
		log.Fatal("jwt key not configured")
	}
	loc := conf.Location()
	log.Infof("admission interview server starting, timezone %s", loc)

	storage, reminderLog := openStorage(conf)

	senders, err := cloud.NewSenders(conf)
	if err != nil {
		log.Fatalf("failed to create notification senders, error %v", err)
	}
	reminders := reminder.NewService(conf.Reminder, senders, reminderLog, loc)

	client := admission.NewClient(conf.Admission)
	interviews := admission.NewInterviewService(client)
	schedules := admission.NewScheduleService(client)

	hub := events.NewHub(conf.AllowOrigins)
	notifier := events.NewNotifier(hub, cloud.NewEventPublisher(conf.Events))

	services := &web.Services{
		Interview:    interviews,
		Reminders:    reminders,
		Events:       notifier,
		Templates:    template.NewService(storage),
		Schedules:    schedules,
		Slots:        schedule.NewService(interviews, schedules, interviews),
		Rescheduler:  calendar.NewRescheduler(interviews, loc),
		Stats:        stats.NewService(interviews, loc),
		Export:       export.NewService(interviews, cloud.NewKodoUploader(conf), loc),
		Verification: verification.NewService(admission.NewEmailService(client), storage, conf.Verification),
		Hub:          hub,
		IM:           cloud.NewIMService(conf.RongCloud),
	}

	// 启动定时任务
	interviewTask := task.NewInterviewTask(interviews, reminders, storage, notifier, loc)
	go func() {
		_ = gocron.Every(1).Hours().Do(interviewTask.TaskForOverdueInterviews)
		_ = gocron.Every(15).Minutes().Do(interviewTask.TaskForPlanReminders)
		_ = gocron.Every(1).Hours().Do(interviewTask.TaskForPurgeStorage)
		<-gocron.Start()
	}()

	// 启动 gin HTTP server。
	r := web.NewRouter(conf, services)
	errch := make(chan error, 1)
	go func() {
		httpServerErr := r.Run(conf.ListenAddr)
		errch <- httpServerErr
	}()

	qC := make(chan os.Signal, 1)
	signal.Notify(qC, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-qC:
		log.Info(s.String())
	case err = <-errch:
		log.Error("http server stopped, error", err.Error())
	}

	xl := xlog.New("shutdown")
	gocron.Clear()
	reminders.Shutdown()
	hub.Close()
	xl.Info("admission interview server stopped")
}
