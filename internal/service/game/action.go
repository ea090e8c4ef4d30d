package game

import (
	"encoding/json"

	"go.uber.org/zap"
)

// 客户端动作类型
const (
	ACTION_SET_SETTINGS      = "SetSettings"
	ACTION_ADD_CHAT_MESSAGES = "AddChatMessages"
	ACTION_ADD_DRAW_ACTIONS  = "AddDrawActions"
	ACTION_PROPOSE_ANSWER    = "ProposeAnswer"
	ACTION_PICK_WORD         = "PickWord"
)

// 服务端动作类型
const (
	ACTION_ADD_PLAYERS          = "AddPlayers"
	ACTION_DELETE_PLAYER        = "DeletePlayer"
	ACTION_SET_PAINTER          = "SetPainter"
	ACTION_SET_NEXT_WORD_PICKER = "SetNextWordPicker"
	ACTION_OFFER_WORDS          = "OfferWords"
	ACTION_START_ROUND          = "StartRound"
	ACTION_END_ROUND            = "EndRound"
	ACTION_CHANGE_PLAYER_SCORE  = "ChangePlayerScore"
	ACTION_ADD_ANSWERS          = "AddAnswers"
	ACTION_WAIT                 = "Wait"
)

// 引擎自身产生的生命周期通知，只在内部流转，
// 发送者固定为 FROM_SELF，永远不会进入 Responder
const (
	ACTION_NEW_PLAYER          = "NewPlayer"
	ACTION_DISCONNECTED_PLAYER = "DisconnectedPlayer"
	ACTION_DELETED_PLAYER      = "DeletedPlayer"
)

const (
	// 系统通知的发送者
	FROM_SELF = "self"
	// 回放历史记录时的来源标记
	FROM_SERVER = "server"
)

type OriginInfo struct {
	From string `json:"from"`
}

// 权威动作记录，服务端与客户端之间的唯一消息形态
type Action struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Origin  *OriginInfo     `json:"origin_info,omitempty"`
}

func (a Action) withOrigin(from string) Action {
	a.Origin = &OriginInfo{From: from}
	return a
}

type SetSettingsPayload struct {
	Settings
}

type StartRoundPayload struct {
	// 只有发给画手的变体才带 word
	Word          string `json:"word,omitempty"`
	RemainingTime int64  `json:"remaining_time"`
}

type ChangePlayerScorePayload struct {
	ID       string `json:"id"`
	NewScore int    `json:"new_score"`
}

func TryUnwrapSetSettings(action Action) *SetSettingsPayload {
	if action.Type != ACTION_SET_SETTINGS {
		return nil
	}

	var payload SetSettingsPayload

	err := json.Unmarshal(action.Payload, &payload)
	if err != nil {
		zap.L().Error(
			"Failed to unwrap SetSettings payload",
			zap.Error(err),
			zap.Any("action", action),
		)
		return nil
	}

	return &payload
}

func TryUnwrapChatMessages(action Action) []ChatMessage {
	if action.Type != ACTION_ADD_CHAT_MESSAGES {
		return nil
	}

	var messages []ChatMessage

	err := json.Unmarshal(action.Payload, &messages)
	if err != nil {
		zap.L().Error(
			"Failed to unwrap AddChatMessages payload",
			zap.Error(err),
			zap.Any("action", action),
		)
		return nil
	}

	return messages
}

func TryUnwrapDrawActions(action Action) []json.RawMessage {
	if action.Type != ACTION_ADD_DRAW_ACTIONS {
		return nil
	}

	var strokes []json.RawMessage

	err := json.Unmarshal(action.Payload, &strokes)
	if err != nil {
		zap.L().Error(
			"Failed to unwrap AddDrawActions payload",
			zap.Error(err),
			zap.Any("action", action),
		)
		return nil
	}

	return strokes
}

// 返回 (answer, ok)，区分空字符串与类型不匹配
func TryUnwrapProposeAnswer(action Action) (string, bool) {
	if action.Type != ACTION_PROPOSE_ANSWER {
		return "", false
	}

	var answer string

	err := json.Unmarshal(action.Payload, &answer)
	if err != nil {
		zap.L().Error(
			"Failed to unwrap ProposeAnswer payload",
			zap.Error(err),
			zap.Any("action", action),
		)
		return "", false
	}

	return answer, true
}

// PickWord 的载荷可以为空，表示让服务端随机兜底
func TryUnwrapPickWord(action Action) (string, bool) {
	if action.Type != ACTION_PICK_WORD {
		return "", false
	}

	if len(action.Payload) == 0 {
		return "", true
	}

	var word string

	err := json.Unmarshal(action.Payload, &word)
	if err != nil {
		zap.L().Error(
			"Failed to unwrap PickWord payload",
			zap.Error(err),
			zap.Any("action", action),
		)
		return "", false
	}

	return word, true
}

// 以下为服务端动作的构造函数

func addPlayersAction(players []Player) Action {
	return Action{
		Type:    ACTION_ADD_PLAYERS,
		Payload: mustMarshal(players),
	}
}

func deletePlayerAction(playerID string) Action {
	return Action{
		Type:    ACTION_DELETE_PLAYER,
		Payload: mustMarshal(playerID),
	}
}

// playerID 为空表示取消画手
func setPainterAction(playerID string) Action {
	action := Action{Type: ACTION_SET_PAINTER}

	if playerID != "" {
		action.Payload = mustMarshal(playerID)
	}

	return action
}

// playerID 为空表示取消选词人
func setNextWordPickerAction(playerID string) Action {
	action := Action{Type: ACTION_SET_NEXT_WORD_PICKER}

	if playerID != "" {
		action.Payload = mustMarshal(playerID)
	}

	return action
}

func offerWordsAction(words []string) Action {
	return Action{
		Type:    ACTION_OFFER_WORDS,
		Payload: mustMarshal(words),
	}
}

// word 只出现在发给画手的变体里
func startRoundAction(word string, remainingTime int64) Action {
	return Action{
		Type: ACTION_START_ROUND,
		Payload: mustMarshal(StartRoundPayload{
			Word:          word,
			RemainingTime: remainingTime,
		}),
	}
}

func endRoundAction() Action {
	return Action{Type: ACTION_END_ROUND}
}

func changePlayerScoreAction(playerID string, newScore int) Action {
	return Action{
		Type: ACTION_CHANGE_PLAYER_SCORE,
		Payload: mustMarshal(ChangePlayerScorePayload{
			ID:       playerID,
			NewScore: newScore,
		}),
	}
}

func addAnswersAction(answers []Answer) Action {
	return Action{
		Type:    ACTION_ADD_ANSWERS,
		Payload: mustMarshal(answers),
	}
}

func addChatMessagesAction(messages []ChatMessage) Action {
	return Action{
		Type:    ACTION_ADD_CHAT_MESSAGES,
		Payload: mustMarshal(messages),
	}
}

func addDrawActionsAction(strokes []json.RawMessage) Action {
	return Action{
		Type:    ACTION_ADD_DRAW_ACTIONS,
		Payload: mustMarshal(strokes),
	}
}

func waitAction() Action {
	return Action{Type: ACTION_WAIT}
}

// 生命周期通知的构造函数，发送者固定为 FROM_SELF

func newPlayerAction(playerID string) Action {
	return Action{
		Type:    ACTION_NEW_PLAYER,
		Payload: mustMarshal(playerID),
	}
}

func disconnectedPlayerAction(playerID string) Action {
	return Action{
		Type:    ACTION_DISCONNECTED_PLAYER,
		Payload: mustMarshal(playerID),
	}
}

func deletedPlayerAction(playerID string) Action {
	return Action{
		Type:    ACTION_DELETED_PLAYER,
		Payload: mustMarshal(playerID),
	}
}

func unwrapPlayerID(action Action) string {
	var playerID string

	if err := json.Unmarshal(action.Payload, &playerID); err != nil {
		zap.L().Error(
			"Failed to unwrap player id payload",
			zap.Error(err),
			zap.Any("action", action),
		)
		return ""
	}

	return playerID
}
