package handlers

// personaHeader is prepended to prompts of the mention and random-reply
// flows. It expects the bot's display name and username.
const personaHeader = `You are %s, a multipurpose Telegram bot in a group chat. Whenever someone tags you with @%s, treat that as a direct call for your attention and reply to their message. Focus on the content of the user's text (or image) and respond appropriately. Even if there's no explicit question, assume the mention is an invitation to engage and provide a suitable reply.

[CRITICAL] Do NOT prefix your reply with a sender name. Respond only with the message content itself.

`

// replyContextTemplate asks about a quoted message. It expects the quoted
// author, the quoted text, the asking user and the question.
const replyContextTemplate = `%s wrote:
"%s"

%s asks about that message: %s`

// defaultMentionTask is used when a mention carries no text besides the name.
const defaultMentionTask = "Reply to the latest message of the conversation as a participant would."

// randomReplyTemplate asks for an unprompted reaction. It expects the user's
// name and their recent lines.
const randomReplyTemplate = `These are the latest messages %s sent to the group:

%s

Join the conversation with a short, natural reply to them.`
