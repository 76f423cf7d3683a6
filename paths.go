package main

// Store path helpers. Paths are slash-joined segments under the shared
// store root; the layout matches the schema every client reads.

func roomsPath() string { return "rooms" }

func roomPath(roomID string) string { return "rooms/" + roomID }

func usersPath(roomID string) string { return "rooms/" + roomID + "/users" }

func userPath(roomID, uid string) string { return "rooms/" + roomID + "/users/" + uid }

func blocksPath(roomID string) string { return "rooms/" + roomID + "/blocks" }

func blockPath(roomID, blocker string) string { return "rooms/" + roomID + "/blocks/" + blocker }

func blockPairPath(roomID, blocker, blocked string) string {
	return "rooms/" + roomID + "/blocks/" + blocker + "/" + blocked
}

func reportsPath(roomID string) string { return "rooms/" + roomID + "/reports" }

func reportPath(roomID, target string) string { return "rooms/" + roomID + "/reports/" + target }

func messagesPath(roomID string) string { return "rooms/" + roomID + "/messages" }

func conversationPath(roomID, chatID string) string {
	return "rooms/" + roomID + "/messages/" + chatID
}

func conversationMessagesPath(roomID, chatID string) string {
	return "rooms/" + roomID + "/messages/" + chatID + "/messages"
}

func owlPostPath(roomID string) string { return "rooms/" + roomID + "/owlPost" }

func leaderboardPath(roomID string) string { return "rooms/" + roomID + "/leaderboard" }

func chosenOnePath(roomID string) string { return "rooms/" + roomID + "/chosenOne" }

func galleonsPath(roomID string) string { return "rooms/" + roomID + "/galleons" }

func feedbackPath(entryID string) string { return "feedback/" + entryID }
