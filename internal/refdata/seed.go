package refdata

// Seed returns the sample workbook used by the offline store: the demo
// users and form options of a fresh installation.
func Seed() map[SheetKey]Sheet {
	return map[SheetKey]Sheet{
		SheetUsers: seedSheet(SheetUsers, [][]any{
			{1, "E001", "張小明", "ming", "ming", FlagYes, FlagYes},
			{2, "E002", "李大華", "hua", "hua", FlagYes, FlagNo},
			{3, "E003", "王美麗", "meli", "meli", FlagYes, FlagNo},
		}),
		SheetSystems: seedSheet(SheetSystems, [][]any{
			{1, "ERP", FlagYes, 1},
			{2, "CRM", FlagYes, 2},
			{3, "OA", FlagYes, 3},
			{4, "其它", FlagYes, 99},
		}),
		SheetSubModules: seedSheet(SheetSubModules, [][]any{
			{1, "ERP", "採購模組", FlagYes, 1},
			{2, "ERP", "庫存管理", FlagYes, 2},
			{3, "ERP", "財務報表", FlagYes, 3},
			{4, "CRM", "客戶管理", FlagYes, 1},
			{5, "CRM", "業務追蹤", FlagYes, 2},
			{6, "OA", "請假系統", FlagYes, 1},
			{7, "OA", "公文流程", FlagYes, 2},
		}),
		SheetQuestionTypes: seedSheet(SheetQuestionTypes, [][]any{
			{1, "電話", FlagYes, 1},
			{2, "Email", FlagYes, 2},
			{3, "現場", FlagYes, 3},
			{4, "Teams", FlagYes, 4},
			{5, "其它", FlagYes, 99},
		}),
		SheetEmployees: seedSheet(SheetEmployees, [][]any{
			{1, "S001", "陳一心", FlagYes},
			{2, "S002", "林二郎", FlagYes},
			{3, "S003", "黃三妹", FlagYes},
			{4, "S004", "吳四方", FlagYes},
		}),
	}
}

func seedSheet(key SheetKey, values [][]any) Sheet {
	headers := DefaultHeaders(key)
	sheet := Sheet{Headers: headers, Rows: make([]Row, 0, len(values))}

	for i, vals := range values {
		row := Row{RowIndexKey: i + 2}
		for j, h := range headers {
			row[h] = vals[j]
		}

		sheet.Rows = append(sheet.Rows, row)
	}

	return sheet
}
