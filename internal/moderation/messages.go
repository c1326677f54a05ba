package moderation

import "fmt"

const (
	messageLinkWarningFormat   = "<@%s> Links are not allowed in main chat. This is your **only warning**.\nNext offense = ban."
	messageBurstWarningFormat  = "<@%s> Please keep messages under %d in a row in main chat.\nThis is your **only warning**. Next burst = ban."
	messageImageChannelWarning = "Text is not allowed in image-only channels (like this one).\n" +
		"Only links and images are permitted to reduce clutter.\n" +
		"Please discuss in a main chat channel instead."

	messageBanNoticeFormat = "<@%s> has been auto-banned: %s"
	messageBanDMFormat     = "You have been **banned**.\nReason: `%s`\nThis action was automatic. Contact staff if you believe this was a mistake."

	messageBanPermissionDenied    = "I don't have permission to ban this user."
	messageDeletePermissionDenied = "I don't have permission to delete that message."
)

func banNotice(userID, reason string) string {
	return fmt.Sprintf(messageBanNoticeFormat, userID, reason)
}

func banDM(reason string) string {
	return fmt.Sprintf(messageBanDMFormat, reason)
}

func warningMessage(v Verdict, authorID string, burstThreshold int) string {
	switch v.Category {
	case CategoryLinkInMain:
		return fmt.Sprintf(messageLinkWarningFormat, authorID)
	case CategoryMessageBurst:
		return fmt.Sprintf(messageBurstWarningFormat, authorID, burstThreshold)
	case CategoryTextInImageChannel:
		return messageImageChannelWarning
	default:
		return fmt.Sprintf("<@%s> %s. This is your **only warning**.", authorID, v.Reason)
	}
}
