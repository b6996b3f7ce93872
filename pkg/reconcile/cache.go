package reconcile

import (
	"astro_edu_backend/internal/model"
	"encoding/json"
	"os"
	"time"
)

// 客户端对账缓存：进度状态的乐观本地镜像，让界面不必等待每次读取。
// 加载时与权威数据合并；与服务端事实冲突的本地乐观标记被丢弃。
// 约定单协程使用（对应 UI 事件循环），合并之间不会交叠。

// Entry 单个任务在本地镜像中的状态
type Entry struct {
	Status model.TaskStatus `json:"status"`
	// Local 为真表示这是本会话内的乐观标记，尚未得到服务端确认
	Local     bool       `json:"local,omitempty"`
	SessionID string     `json:"sessionId,omitempty"`
	MarkedAt  *time.Time `json:"markedAt,omitempty"`
}

type snapshot struct {
	UserID    uint           `json:"userId"`
	SessionID string         `json:"sessionId"`
	SavedAt   time.Time      `json:"savedAt"`
	Tasks     map[uint]Entry `json:"tasks"`
}

type Cache struct {
	store     Store
	userID    uint
	sessionID string
	tasks     map[uint]Entry
}

// Open 加载本地快照。快照损坏、属于别的用户、或任何读取失败都
// 直接重建为空缓存——宁可空白，绝不带着坏数据继续跑。
// 上一会话遗留的未确认乐观标记一并丢弃。
func Open(store Store, userID uint, sessionID string) *Cache {
	c := &Cache{
		store:     store,
		userID:    userID,
		sessionID: sessionID,
		tasks:     make(map[uint]Entry),
	}

	data, err := store.Load()
	if err != nil {
		if !os.IsNotExist(err) {
			store.Clear()
		}
		return c
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil || snap.UserID != userID || snap.Tasks == nil {
		store.Clear()
		return c
	}

	for taskID, e := range snap.Tasks {
		if e.Local && e.SessionID != sessionID {
			// 旧会话的乐观标记没等到服务端确认，不再假装它发生过
			continue
		}
		c.tasks[taskID] = e
	}
	return c
}

// MarkCompleted 乐观地把任务标成已完成，等待服务端确认。
// 请求还在途中时界面不会把用户刚点掉的任务又弹回去。
func (c *Cache) MarkCompleted(taskID uint) {
	now := time.Now()
	c.tasks[taskID] = Entry{
		Status:    model.TaskCompleted,
		Local:     true,
		SessionID: c.sessionID,
		MarkedAt:  &now,
	}
}

// SetStatus 写入一个非乐观的本地状态（例如服务端响应直接带回的记录）
func (c *Cache) SetStatus(taskID uint, status model.TaskStatus) {
	c.tasks[taskID] = Entry{Status: status}
}

// Merge 用一次成功的权威读取刷新镜像。服务端状态逐任务覆盖本地，
// 唯一例外：本会话内尚未被该次读取覆盖到的乐观完成标记保留，
// 待下一次成功读取确认或推翻。
func (c *Cache) Merge(authoritative []model.UserTask) {
	merged := make(map[uint]Entry, len(authoritative))
	for _, ut := range authoritative {
		merged[ut.TaskID] = Entry{Status: ut.Status}
	}

	for taskID, e := range c.tasks {
		if !e.Local || e.SessionID != c.sessionID {
			continue
		}
		if _, acked := merged[taskID]; acked {
			// 服务端已对该任务表态，以服务端为准
			continue
		}
		merged[taskID] = e
	}

	c.tasks = merged
}

// Get 查询任务的本地视图；没有任何记录时返回 pending
func (c *Cache) Get(taskID uint) model.TaskStatus {
	if e, ok := c.tasks[taskID]; ok {
		return e.Status
	}
	return model.TaskPending
}

// Pending 尚未确认的乐观标记数量
func (c *Cache) Pending() int {
	n := 0
	for _, e := range c.tasks {
		if e.Local {
			n++
		}
	}
	return n
}

func (c *Cache) Len() int {
	return len(c.tasks)
}

// Flush 持久化当前镜像
func (c *Cache) Flush() error {
	snap := snapshot{
		UserID:    c.userID,
		SessionID: c.sessionID,
		SavedAt:   time.Now(),
		Tasks:     c.tasks,
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.store.Save(data)
}
