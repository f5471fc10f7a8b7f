package recap

// recapTask is the task used for standard recaps.
const recapTask = `Write a short recap of the group chat below. List the main topics that were discussed and who took part in each, one line per topic. Write in the language of the conversation. Do not invent anything that is not in the messages.`

// singleShotTemplate wraps the whole chat window. Parameters: task, joined messages.
const singleShotTemplate = `%s

Chat messages (format "sender: text"):
%s`

// chunkTemplate asks for a partial answer over one slice of the window.
// Parameters: part number, part count, task, chunk text.
const chunkTemplate = `You are reading part %d of %d of a long group chat log. The overall task is:
%s

Extract from this part only what is needed for that task, as a compact list of topics with the people involved. Do not write an introduction.

Chat log part:
%s`

// combineTemplate merges the partial answers. Parameters: task, max length, partial answers.
const combineTemplate = `The partial answers below were produced from consecutive parts of the same group chat log for this task:
%s

Combine them into a single answer. Every topic must appear only once: merge duplicated or overlapping topics instead of repeating them. The answer must not exceed %d characters.

Partial answers:
%s`

// shortenTemplate asks for a shorter version of an oversized answer. Parameters: max length, text.
const shortenTemplate = `Shorten the text below to at most %d characters. Keep the most important points and the original language. Reply with the shortened text only.

%s`
