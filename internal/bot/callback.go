package bot

import (
	"fmt"
	"strings"
)

type callbackAction string

const (
	actionAddTask         callbackAction = "task"
	actionTrackFollowUp   callbackAction = "followup"
	actionLogDecision     callbackAction = "decision"
	actionSaveMeeting     callbackAction = "meeting"
	actionUseReply        callbackAction = "reply"
	actionToggleAgenda    callbackAction = "agenda"
	actionToggleNotes     callbackAction = "notes"
	actionToggleTask      callbackAction = "tasktoggle"
	actionDeleteTask      callbackAction = "taskdel"
	actionResolveFollowUp callbackAction = "furesolve"
	actionDeleteFollowUp  callbackAction = "fudel"
	actionDeleteDecision  callbackAction = "decdel"
	actionNoop            callbackAction = "noop"
)

var knownActions = map[callbackAction]bool{
	actionAddTask: true, actionTrackFollowUp: true, actionLogDecision: true, actionSaveMeeting: true,
	actionUseReply: true, actionToggleAgenda: true, actionToggleNotes: true,
	actionToggleTask: true, actionDeleteTask: true, actionResolveFollowUp: true,
	actionDeleteFollowUp: true, actionDeleteDecision: true, actionNoop: true,
}

// Telegram limits callback data to 64 bytes; uuids leave plenty of room.
func encodeCallback(action callbackAction, id string) string {
	return string(action) + ":" + id
}

func decodeCallback(data string) (callbackAction, string, error) {
	action, id, ok := strings.Cut(data, ":")
	if !ok || id == "" {
		return "", "", fmt.Errorf("malformed callback data %q", data)
	}
	if !knownActions[callbackAction(action)] {
		return "", "", fmt.Errorf("unknown callback action %q", action)
	}
	return callbackAction(action), id, nil
}
