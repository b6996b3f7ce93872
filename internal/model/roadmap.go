package model

type RoadmapDifficulty string

const (
	Beginner     RoadmapDifficulty = "beginner"
	Intermediate RoadmapDifficulty = "intermediate"
	Advanced     RoadmapDifficulty = "advanced"
)

// TaskType 任务类型标签，仅用于展示和统计
type TaskType string

const (
	TaskTheory   TaskType = "theory"
	TaskPractice TaskType = "practice"
	TaskQuiz     TaskType = "quiz"
	TaskProject  TaskType = "project"
)

// Roadmap 学习路线图，由若干按顺序解锁的关卡（"星球"）组成。
// 课程内容由外部维护，本引擎只读。
// swagger:model Roadmap
type Roadmap struct {
	BaseModel
	Title         string            `gorm:"size:255;not null" json:"title"`
	Description   string            `gorm:"type:text" json:"description"`
	Topic         string            `gorm:"size:100;index" json:"topic"`
	Difficulty    RoadmapDifficulty `gorm:"size:20;default:'beginner'" json:"difficulty"`
	EstimatedTime int               `gorm:"default:0" json:"estimatedTime"` // 预计学习时长（小时）
	Levels        []Level           `gorm:"foreignKey:RoadmapID" json:"levels,omitempty"`
}

func (Roadmap) TableName() string {
	return "roadmaps"
}

// Level 路线图中的一个关卡，OrderNumber 在同一路线图内唯一并决定解锁顺序
// swagger:model Level
type Level struct {
	BaseModel
	RoadmapID   uint   `gorm:"index:idx_roadmap_order,unique;type:bigint unsigned;not null" json:"roadmapId"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	OrderNumber int    `gorm:"index:idx_roadmap_order,unique;not null" json:"orderNumber"`
	Tasks       []Task `gorm:"foreignKey:LevelID" json:"tasks,omitempty"`
}

func (Level) TableName() string {
	return "levels"
}

// Task 关卡内的原子学习单元，完成后奖励 XPReward 经验值
// swagger:model Task
type Task struct {
	BaseModel
	LevelID     uint     `gorm:"index;type:bigint unsigned;not null" json:"levelId"`
	Title       string   `gorm:"size:255;not null" json:"title"`
	Description string   `gorm:"type:text" json:"description"`
	Type        TaskType `gorm:"size:20;default:'practice'" json:"type"`
	XPReward    int      `gorm:"default:0" json:"xpReward"`
}

func (Task) TableName() string {
	return "tasks"
}
