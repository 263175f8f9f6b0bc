package extraction

import "testing"

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"tags become spaces", "<p>本期<b>应还</b></p>", "本期 应还"},
		{"entities", "a&nbsp;&amp;&nbsp;b &lt;c&gt; &yen;10", "a & b <c> ¥10"},
		{"whitespace collapsed", "  x \n\t　 y  ", "x y"},
		{"style and script dropped", "<style>td{width:1234px}</style><script>var n=5678;</script>尾号<i>4321</i>", "尾号 4321"},
		{"attributes", `<td class="amt" style="color:red">1,234.56</td>`, "1,234.56"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripHTML(tt.in); got != tt.want {
				t.Fatalf("StripHTML(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
