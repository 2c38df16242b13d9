package alert

import "strings"

// Tokyo23Wards is the fixed set of special wards the bot reports on.
var Tokyo23Wards = []string{
	"千代田区", "中央区", "港区", "新宿区", "文京区", "台東区",
	"墨田区", "江東区", "品川区", "目黒区", "大田区", "世田谷区",
	"渋谷区", "中野区", "杉並区", "豊島区", "北区", "荒川区",
	"板橋区", "練馬区", "足立区", "葛飾区", "江戸川区",
}

// PickWards restricts alerts to those whose area names one of Tokyo's 23
// wards, annotating each match with the ward name.
func PickWards(alerts []Alert) []Alert {
	var result []Alert
	for _, a := range alerts {
		for _, w := range Tokyo23Wards {
			if strings.Contains(a.Area, w) || (a.Ward != "" && strings.Contains(a.Ward, w)) {
				a.Ward = w
				result = append(result, a)
				break
			}
		}
	}
	return result
}
