package model

// Effect names the notification a committed transition triggers
type Effect string

const (
	EffectNone                      Effect = ""
	EffectNotifyLeader              Effect = "notify_leader"
	EffectNotifyRegionalHead        Effect = "notify_regional_head"
	EffectNotifyHR                  Effect = "notify_hr"
	EffectNotifyHRScheduleInterview Effect = "notify_hr_schedule_interview"
	EffectNotifyIT                  Effect = "notify_it"
	EffectNotifyVendor              Effect = "notify_vendor"
	EffectNotifyEmployee            Effect = "notify_employee"
)
