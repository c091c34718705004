package debug

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/sirupsen/logrus"
)

// Charts 拓扑网络图和状态分配图
type Charts struct {
	Record
}

// Render 格式化
func (c *Charts) Render(w io.Writer) error {
	graph := charts.NewGraph()
	graph.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "电路节点信息",
			Subtitle: "器件实例与节点连接网络图",
		}),
		charts.WithLegendOpts(opts.Legend{
			Type:   "scroll",
			Orient: "vertical",
			Right:  "10",
			Top:    "20",
			Bottom: "20",
		}),
	)
	graph.SetSeriesOptions(
		charts.WithEmphasisOpts(opts.Emphasis{
			Label: &opts.Label{
				Show:     opts.Bool(true),
				Color:    "black",
				Position: "left",
			},
		}),
		charts.WithLineStyleOpts(opts.LineStyle{
			Curveness: 0.3,
		}),
	)
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "状态分配",
			Subtitle: "每个实例占用的状态编号范围",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Scale: opts.Bool(true),
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "inside",
			Start:      0,
			End:        100,
			XAxisIndex: []int{0},
		}),
	)
	// 网络图
	{
		graphNodes := make([]opts.GraphNode, len(c.Elements))
		for i, n := range c.Elements {
			graphNodes[i] = opts.GraphNode{
				Name:     n,
				Category: 0,
				Tooltip:  &opts.Tooltip{Show: opts.Bool(true)},
			}
		}
		graphNodes[0].ItemStyle = &opts.ItemStyle{Color: "#000000de"}
		graphLink := make([]opts.GraphLink, 0)
		for num, list := range c.Nodes {
			target := graphNodes[0].Name
			if num != 0 {
				category := 1
				if num < len(c.Internal) && c.Internal[num] {
					category = 2
				}
				target = c.NodeName(num)
				graphNodes = append(graphNodes, opts.GraphNode{
					Name:     target,
					Category: category,
					Tooltip:  &opts.Tooltip{Show: opts.Bool(true)},
				})
			}
			for _, y := range list {
				graphLink = append(graphLink, opts.GraphLink{
					Source: c.Elements[y[0]],
					Target: target,
					Value:  float32(y[1]),
				})
			}
		}
		graph.AddSeries("电路列表", graphNodes, graphLink,
			charts.WithGraphChartOpts(opts.GraphChart{
				Categories: []*opts.GraphCategory{
					{Name: "元件", ItemStyle: &opts.ItemStyle{Color: "#c71979b7"}},
					{Name: "节点", ItemStyle: &opts.ItemStyle{Color: "#1987c7b7"}},
					{Name: "内部节点", ItemStyle: &opts.ItemStyle{Color: "#19c787b7"}},
				},
				Roam:               opts.Bool(true),
				Force:              &opts.GraphForce{Repulsion: 80},
				EdgeLabel:          &opts.EdgeLabel{Show: opts.Bool(true)},
				FocusNodeAdjacency: opts.Bool(true),
			}))
	}
	// 状态分配
	{
		names := make([]string, 0, len(c.Elements))
		start := make([]opts.BarData, 0, len(c.Elements))
		count := make([]opts.BarData, 0, len(c.Elements))
		for i := 1; i < len(c.Elements); i++ {
			names = append(names, c.Elements[i])
			start = append(start, opts.BarData{Value: c.States[i][0]})
			count = append(count, opts.BarData{Value: c.States[i][1], Name: fmt.Sprintf("%d..%d", c.States[i][0], c.States[i][0]+c.States[i][1])})
		}
		bar.SetXAxis(names).
			AddSeries("起始", start, charts.WithBarChartOpts(opts.BarChart{Stack: "state"})).
			AddSeries("数量", count, charts.WithBarChartOpts(opts.BarChart{Stack: "state"}))
	}
	page := components.NewPage()
	page.AddCharts(graph, bar)
	return page.Render(w)
}

// Handler 发布到网页面
func (c *Charts) Handler(w http.ResponseWriter, _ *http.Request) {
	if err := c.Render(w); err != nil {
		c.Error(err)
	}
}

func (c *Charts) Error(err error) { logrus.WithError(err).Error("render charts") }
