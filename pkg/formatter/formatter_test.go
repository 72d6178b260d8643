package formatter

import "testing"

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "plain", in: "hello world", want: "hello world"},
		{name: "newlines only", in: "a\nb\n", want: "a<br>b<br>"},
		{name: "bold", in: "**big** deal", want: "<strong>big</strong> deal"},
		{name: "italic", in: "an *aside*", want: "an <em>aside</em>"},
		{name: "bold then italic", in: "**a** and *b*", want: "<strong>a</strong> and <em>b</em>"},
		{name: "heading 3", in: "# Title\nbody", want: "<h3>Title</h3><br>body"},
		{name: "heading 4", in: "## Sub\nbody", want: "<h4>Sub</h4><br>body"},
		{name: "bullets", in: "• a\n• b", want: "<ul><li>a</li><li>b</li></ul>"},
		{
			name: "bullets with heading",
			in:   "# Key points\n• **one**\n• two",
			want: "<ul><h3>Key points</h3><li><strong>one</strong></li><li>two</li></ul>",
		},
		{name: "lone asterisk stays literal", in: "2 * 3", want: "2 * 3"},
		{name: "bullet needs line start", in: "x • y", want: "x • y"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.in); got != tt.want {
				t.Errorf("Format(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
