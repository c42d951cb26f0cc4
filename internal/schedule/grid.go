package schedule

import "sort"

// BlockChip 网格单元中的一个班级标签
type BlockChip struct {
	Block   string `json:"block"`
	Program string `json:"program"`
}

// Grid 某一天的 教室 × 时段 占用视图（构建后只读）
type Grid struct {
	Day   string                             `json:"day"`
	Mode  Mode                               `json:"mode"`
	Rooms []string                           `json:"rooms"`
	Cells map[Session]map[string][]BlockChip `json:"cells"`
}

// Cell 返回指定时段、教室的班级列表副本
func (g Grid) Cell(s Session, room string) []BlockChip {
	chips := g.Cells[s][room]
	out := make([]BlockChip, len(chips))
	copy(out, chips)
	return out
}

// Occupied 单元格中的班级数
func (g Grid) Occupied(s Session, room string) int {
	return len(g.Cells[s][room])
}

// gridAcc 构建过程中的累加器，仅在 BuildGrid 内部可见
type gridAcc struct {
	rooms map[string]bool
	cells map[Session]map[string]*orderedChips
}

// orderedChips 按首次写入顺序保存班级，program 以最后一次写入为准
type orderedChips struct {
	order []string
	chips map[string]BlockChip
}

func (o *orderedChips) put(block, program string) *orderedChips {
	if o == nil {
		o = &orderedChips{chips: make(map[string]BlockChip)}
	}
	key := NormalizeBlock(block)
	if prev, ok := o.chips[key]; ok {
		prev.Program = program
		o.chips[key] = prev
		return o
	}
	o.order = append(o.order, key)
	o.chips[key] = BlockChip{Block: block, Program: program}
	return o
}

func (a gridAcc) fold(m CourseMeeting, mode Mode) gridAcc {
	room := roomOf(m, mode)
	session := sessionOf(m, mode)
	block := m.BlockCode
	if block == "" {
		block = UnassignedRoom
	}
	a.rooms[room] = true
	byRoom, ok := a.cells[session]
	if !ok {
		byRoom = make(map[string]*orderedChips)
		a.cells[session] = byRoom
	}
	byRoom[room] = byRoom[room].put(block, m.ProgramCode)
	return a
}

// freeze 输出全新的只读结构，与累加器不共享任何切片或映射
func (a gridAcc) freeze(day string, mode Mode) Grid {
	rooms := make([]string, 0, len(a.rooms))
	for r := range a.rooms {
		rooms = append(rooms, r)
	}
	sort.Strings(rooms)

	cells := make(map[Session]map[string][]BlockChip, len(Sessions))
	for _, s := range Sessions {
		cells[s] = make(map[string][]BlockChip)
		for room, oc := range a.cells[s] {
			chips := make([]BlockChip, 0, len(oc.order))
			for _, key := range oc.order {
				chips = append(chips, oc.chips[key])
			}
			cells[s][room] = chips
		}
	}
	return Grid{Day: day, Mode: mode, Rooms: rooms, Cells: cells}
}

// Selects 判断一次课是否属于 (day, mode) 视图
func Selects(m CourseMeeting, day string, mode Mode) bool {
	if mode == ModeExam {
		return m.ExamDay != "" && m.ExamDay == day
	}
	return m.HasF2FDay(day)
}

func roomOf(m CourseMeeting, mode Mode) string {
	room := m.Room
	if mode == ModeExam {
		room = m.ExamRoom
	}
	if room == "" {
		return UnassignedRoom
	}
	return room
}

// BuildGrid 组装某天的教室占用网格。
//
// 面授模式选取面授日包含 day 的课，考试模式选取 examDay == day 的课；
// 教室为空的课进入 UnassignedRoom 桶；同一 (时段, 教室, 班级) 只保留一个标签。
// 教室按字典序排列，相同输入重复调用得到结构相同的结果。
func BuildGrid(meetings []CourseMeeting, day string, mode Mode) Grid {
	if code := NormalizeWeekday(day); code != "" {
		day = code
	}
	acc := gridAcc{
		rooms: make(map[string]bool),
		cells: make(map[Session]map[string]*orderedChips),
	}
	for _, m := range meetings {
		if !Selects(m, day, mode) {
			continue
		}
		acc = acc.fold(m, mode)
	}
	return acc.freeze(day, mode)
}
