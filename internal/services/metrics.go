package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	issuesCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "issue_tracker_issues_created_total",
		Help: "Issues created, by whether a default project was assigned.",
	}, []string{"default_project"})

	issueUpdatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "issue_tracker_issue_updates_total",
		Help: "Successful issue updates, by resulting status.",
	}, []string{"status"})

	projectWritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "issue_tracker_project_writes_total",
		Help: "Project writes by operation and outcome.",
	}, []string{"operation", "outcome"})

	notificationFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "issue_tracker_notification_failures_total",
		Help: "Notifications that could not be delivered.",
	})
)
